package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-nutrition-scanner/internal/config"
	apperrors "go-nutrition-scanner/internal/errors"
	"go-nutrition-scanner/internal/pipeline"
	"go-nutrition-scanner/internal/scoring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAnalyzer struct {
	result *pipeline.AnalysisResult
	err    error

	gotBarcode string
	gotProduct string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, image []byte, mime, barcode, productName string) (*pipeline.AnalysisResult, error) {
	s.gotBarcode = barcode
	s.gotProduct = productName
	return s.result, s.err
}

type stubExplainer struct {
	enabled bool
	text    string
	err     error
}

func (s stubExplainer) Enabled() bool { return s.enabled }

func (s stubExplainer) Explain(ctx context.Context, result *pipeline.AnalysisResult) (string, error) {
	return s.text, s.err
}

type memStore struct {
	saved map[string]*pipeline.AnalysisResult
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string]*pipeline.AnalysisResult)}
}

func (m *memStore) Save(ctx context.Context, result *pipeline.AnalysisResult) error {
	m.saved[result.ID] = result
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (*pipeline.AnalysisResult, error) {
	if result, ok := m.saved[id]; ok {
		return result, nil
	}
	return nil, apperrors.NewNotFoundError("analysis not found", nil)
}

func (m *memStore) Recent(ctx context.Context, limit int) ([]*pipeline.AnalysisResult, error) {
	var out []*pipeline.AnalysisResult
	for _, result := range m.saved {
		out = append(out, result)
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout: 5 * time.Second,
		MaxUploadSize:  1 << 20,
	}
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "label.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake image bytes"))

	for key, value := range fields {
		writer.WriteField(key, value)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	handler := NewHandler(&stubAnalyzer{}, stubExplainer{}, newMemStore(), testConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload["status"] != "available" {
		t.Errorf("status field = %v", payload["status"])
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	analyzer := &stubAnalyzer{result: &pipeline.AnalysisResult{
		ID:             "a1",
		Recommendation: scoring.RecommendSafe,
	}}
	store := newMemStore()
	handler := NewHandler(analyzer, stubExplainer{enabled: true, text: "Looks fine."}, store, testConfig())

	body, contentType := multipartUpload(t, map[string]string{
		"barcode":      "0123456789",
		"product_name": "granola",
	})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var response AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if response.Analysis == nil || response.Analysis.ID != "a1" {
		t.Errorf("analysis = %+v", response.Analysis)
	}
	if response.Explanation != "Looks fine." {
		t.Errorf("explanation = %q", response.Explanation)
	}

	if analyzer.gotBarcode != "0123456789" || analyzer.gotProduct != "granola" {
		t.Errorf("form fields not forwarded: barcode=%q product=%q", analyzer.gotBarcode, analyzer.gotProduct)
	}
	if _, ok := store.saved["a1"]; !ok {
		t.Error("result was not persisted")
	}
}

func TestAnalyzeEndpointRequiresImage(t *testing.T) {
	handler := NewHandler(&stubAnalyzer{}, stubExplainer{}, newMemStore(), testConfig())

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString("no file"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpointMapsErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "unsupported image",
			err:  apperrors.NewUnsupportedImageError("bad upload", nil),
			want: http.StatusUnsupportedMediaType,
		},
		{
			name: "extraction exhausted",
			err:  &apperrors.ExtractionExhaustedError{},
			want: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&stubAnalyzer{err: tt.err}, stubExplainer{}, newMemStore(), testConfig())

			body, contentType := multipartUpload(t, nil)
			req := httptest.NewRequest(http.MethodPost, "/analyze", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAnalyzeEndpointExplainFailureDegrades(t *testing.T) {
	analyzer := &stubAnalyzer{result: &pipeline.AnalysisResult{ID: "a2"}}
	explainer := stubExplainer{enabled: true, err: apperrors.NewNetworkError("upstream down", nil)}
	handler := NewHandler(analyzer, explainer, newMemStore(), testConfig())

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite explanation failure", rec.Code)
	}
	var response AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if response.Explanation != "" {
		t.Errorf("explanation = %q, want empty", response.Explanation)
	}
}

func TestGetResult(t *testing.T) {
	store := newMemStore()
	store.saved["a1"] = &pipeline.AnalysisResult{ID: "a1"}
	handler := NewHandler(&stubAnalyzer{}, stubExplainer{}, store, testConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/a1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListResults(t *testing.T) {
	store := newMemStore()
	store.saved["a1"] = &pipeline.AnalysisResult{ID: "a1"}
	handler := NewHandler(&stubAnalyzer{}, stubExplainer{}, store, testConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload struct {
		Results []*pipeline.AnalysisResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Results) != 1 || payload.Results[0].ID != "a1" {
		t.Errorf("results = %+v", payload.Results)
	}
}
