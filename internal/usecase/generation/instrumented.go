// Package generation holds use-case decorators around text generation providers.
package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain"
)

// InstrumentedGenerator wraps a Generator with request logging.
// Transport metrics (requests, duration, tokens) are recorded in the provider packages.
type InstrumentedGenerator struct {
	inner    domain.Generator
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedGenerator wraps a generator with observability.
func NewInstrumentedGenerator(
	inner domain.Generator, provider, model string, logger *zap.Logger,
) *InstrumentedGenerator {
	return &InstrumentedGenerator{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Generate delegates to the inner generator and logs the outcome.
func (p *InstrumentedGenerator) Generate(
	ctx context.Context, prompt string,
) (domain.GenerationResult, error) {
	start := time.Now()

	result, err := p.inner.Generate(ctx, prompt)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Generation request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Int("prompt_chars", len(prompt)),
			zap.Error(err),
		)
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}

	p.logger.Debug("Generation request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("text_chars", len(result.Text)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
