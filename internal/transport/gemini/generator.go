// Package gemini is a text generation provider on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/metrics"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Config holds the Gemini provider settings.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Generator calls models/<model>:generateContent with a single user turn.
type Generator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

const provider = "gemini"

// NewGenerator creates a Gemini generation provider.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Generator{client: client, model: model, logger: cfg.Logger}, nil
}

// Generate implements domain.Generator. The text is candidates[0].content.parts[0].text.
func (g *Generator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	start := time.Now()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)

	duration := time.Since(start)

	if err != nil {
		g.recordError("api_error")
		return domain.GenerationResult{}, parseAPIError(err)
	}

	text, ok := firstText(resp)
	if !ok {
		g.recordError("empty_response")
		return domain.GenerationResult{}, fmt.Errorf("gemini response has no candidate text: %w", domain.ErrPayloadShape)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(provider, g.model).Observe(duration.Seconds())

	var promptTokens, totalTokens int
	if u := resp.UsageMetadata; u != nil {
		promptTokens, totalTokens = int(u.PromptTokenCount), int(u.TotalTokenCount)
	}
	if totalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(provider, g.model, "prompt").Add(float64(promptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(provider, g.model, "total").Add(float64(totalTokens))
	}

	return domain.GenerationResult{
		Text:         text,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies the configured model is reachable.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", g.model, err)
	}
	return nil
}

// Model returns the configured model name.
func (g *Generator) Model() string { return g.model }

func (g *Generator) recordError(errorType string) {
	metrics.GenerationRequestsTotal.WithLabelValues(provider, g.model, "error").Inc()
	metrics.GenerationErrorsTotal.WithLabelValues(provider, g.model, errorType).Inc()
}

func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return "", false
	}
	text := c.Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// parseAPIError wraps every failure with domain.ErrTransport; context errors stay visible to errors.Is.
func parseAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini API error %d %s: %s: %w", apiErr.Code, apiErr.Status, apiErr.Message, domain.ErrTransport)
	}
	return fmt.Errorf("gemini request failed: %w: %w", domain.ErrTransport, err)
}
