// Package explain generates a short natural-language summary of a
// completed analysis via a hosted chat-completions API. Explanations are
// presentation-only enrichment: they are produced after scoring, attached
// alongside the result, and never feed back into it.
package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "go-nutrition-scanner/internal/errors"
	"go-nutrition-scanner/internal/logger"
	"go-nutrition-scanner/internal/pipeline"
)

// Client talks to an OpenRouter-compatible chat-completions endpoint.
// Without an API key the client is disabled and Explain returns empty.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewClient creates an explanation client
func NewClient(baseURL, model, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  httpClient,
	}
}

// Enabled reports whether explanation generation is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Explain produces a consumer-readable summary of the analysis. A disabled
// client returns empty without error; transport failures return an error
// the caller is expected to absorb, since explanations are optional.
func (c *Client) Explain(ctx context.Context, result *pipeline.AnalysisResult) (string, error) {
	if !c.Enabled() {
		return "", nil
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a nutrition assistant. Explain a packaged-food assessment to a consumer in two or three plain sentences. Do not invent numbers."},
			{Role: "user", Content: summarize(result)},
		},
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode explanation request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewNetworkError("failed to build explanation request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.NewNetworkError("explanation request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewNetworkError(
			fmt.Sprintf("explanation endpoint returned %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperrors.NewNetworkError("failed to read explanation response", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Choices) == 0 {
		logger.WithField("body_length", len(raw)).Warn("Unparseable explanation response")
		return "", apperrors.NewProcessingError("malformed explanation response", err)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// summarize renders the scored result as the user prompt
func summarize(result *pipeline.AnalysisResult) string {
	var b strings.Builder
	if result.ProductName != "" {
		fmt.Fprintf(&b, "Product: %s\n", result.ProductName)
	}
	fmt.Fprintf(&b, "Overall score: %.0f/100 (%s)\n", result.OverallScore, result.Recommendation)
	fmt.Fprintf(&b, "Processing class: %d of 4\n", result.Assessment.ProcessingClass)
	fmt.Fprintf(&b, "Nutrient density: %.0f/100, additive risk: %.0f/100\n",
		result.Assessment.NutrientDensity, result.Assessment.AdditiveRisk)
	if len(result.Classified.Concerning) > 0 {
		fmt.Fprintf(&b, "Concerning additives: %s\n", strings.Join(result.Classified.Concerning, ", "))
	}
	if len(result.Classified.Allergens) > 0 {
		fmt.Fprintf(&b, "Allergens: %s\n", strings.Join(result.Classified.Allergens, ", "))
	}
	return b.String()
}
