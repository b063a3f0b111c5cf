package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-nutrition-scanner/internal/config"
	apperrors "go-nutrition-scanner/internal/errors"
	"go-nutrition-scanner/internal/logger"
	"go-nutrition-scanner/internal/pipeline"
	"go-nutrition-scanner/internal/storage"
)

// Analyzer runs one label analysis end to end
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mime, barcode, productName string) (*pipeline.AnalysisResult, error)
}

// Explainer generates an optional natural-language summary
type Explainer interface {
	Enabled() bool
	Explain(ctx context.Context, result *pipeline.AnalysisResult) (string, error)
}

// AnalysisResponse wraps the immutable result with presentation-only
// enrichment.
type AnalysisResponse struct {
	Analysis    *pipeline.AnalysisResult `json:"analysis"`
	Explanation string                   `json:"explanation,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler wires the HTTP surface: health, analyze, and result retrieval
func NewHandler(analyzer Analyzer, explainer Explainer, store storage.Store, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(requestSizeLimiter(cfg.MaxUploadSize))

	r.GET("/health", healthCheck)
	r.POST("/analyze", analyzeLabel(analyzer, explainer, store, cfg))
	r.GET("/results/:id", getResult(store))
	r.GET("/results", listResults(store))

	return r
}

func analyzeLabel(a Analyzer, e Explainer, store storage.Store, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing label analysis request")

		file, header, err := c.Request.FormFile("image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "image file is required", err)
			return
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "unable to read image upload", err)
			return
		}

		mime := header.Header.Get("Content-Type")
		barcode := c.PostForm("barcode")
		productName := c.PostForm("product_name")

		result, err := a.Analyze(ctx, image, mime, barcode, productName)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = apperrors.NewTimeoutError("analysis timed out", err)
			}
			respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
			return
		}

		if err := store.Save(ctx, result); err != nil {
			// Persistence is not on the response critical path
			logger.WithError(err).WithField("analysis_id", result.ID).Error("Failed to persist analysis")
		}

		response := AnalysisResponse{Analysis: result}
		if e != nil && e.Enabled() {
			if explanation, err := e.Explain(ctx, result); err != nil {
				logger.WithError(err).WithField("analysis_id", result.ID).Warn("Explanation generation failed")
			} else {
				response.Explanation = explanation
			}
		}

		logger.WithFields(logrus.Fields{
			"analysis_id":        result.ID,
			"tier":               string(result.Provenance.Tier),
			"recommendation":     string(result.Recommendation),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Label analysis completed successfully")

		c.JSON(http.StatusOK, response)
	}
}

func getResult(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := store.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to load analysis", err)
			return
		}
		c.JSON(http.StatusOK, AnalysisResponse{Analysis: result})
	}
}

func listResults(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		results, err := store.Recent(c.Request.Context(), limit)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to list analyses", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
