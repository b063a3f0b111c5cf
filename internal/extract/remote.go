package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "go-nutrition-scanner/internal/errors"
)

// RemoteOCRTier sends the normalized image to a hosted inference API
// (Hugging Face image-to-text models) and returns the recognized text.
// Quota exhaustion, model cold starts and missing credentials all surface
// as TierUnavailable so the chain falls through to the local engine.
type RemoteOCRTier struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewRemoteOCRTier creates the remote managed OCR tier
func NewRemoteOCRTier(baseURL, model, apiKey string, client *http.Client) *RemoteOCRTier {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteOCRTier{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  client,
	}
}

func (t *RemoteOCRTier) Kind() TierKind {
	return TierRemoteOCR
}

func (t *RemoteOCRTier) Extract(ctx context.Context, req Request) (*RawExtraction, error) {
	if t.apiKey == "" {
		return nil, apperrors.NewTierUnavailable(string(TierRemoteOCR), "missing api key", nil)
	}

	endpoint := fmt.Sprintf("%s/%s?wait_for_model=true", t.baseURL, t.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(req.Image))
	if err != nil {
		return nil, apperrors.NewTierUnavailable(string(TierRemoteOCR), "bad request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	httpReq.Header.Set("Content-Type", "application/octet-stream")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewTierUnavailable(string(TierRemoteOCR), "network error", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to parsing below
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.NewTierUnavailable(string(TierRemoteOCR), "rate limited", nil)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, apperrors.NewTierUnavailable(string(TierRemoteOCR), "model loading", nil)
	default:
		return nil, apperrors.NewTierUnavailable(string(TierRemoteOCR),
			fmt.Sprintf("http_%d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.NewTierUnavailable(string(TierRemoteOCR), "read error", err)
	}

	text := parseInferenceText(body)
	confidence := ConfidenceMedium
	if len(strings.TrimSpace(text)) <= 10 {
		confidence = ConfidenceLow
	}

	return &RawExtraction{
		Tier:           TierRemoteOCR,
		Text:           text,
		TierConfidence: confidence,
	}, nil
}

// parseInferenceText handles the common hosted inference response shapes:
// a list of {generated_text} objects or a single object with generated_text
// or text. Anything else degrades to the raw body as plain text.
func parseInferenceText(body []byte) string {
	var asList []map[string]interface{}
	if err := json.Unmarshal(body, &asList); err == nil && len(asList) > 0 {
		if text := stringField(asList[0], "generated_text", "text", "answer"); text != "" {
			return text
		}
	}
	var asObject map[string]interface{}
	if err := json.Unmarshal(body, &asObject); err == nil {
		if text := stringField(asObject, "generated_text", "text"); text != "" {
			return text
		}
	}
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return asString
	}
	return string(body)
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
