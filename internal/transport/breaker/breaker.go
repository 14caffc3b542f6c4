// Package breaker puts circuit breakers in front of the remote services.
// An open breaker fails calls fast; nothing here retries.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/keyword"
	"github.com/kailas-cloud/boostube/internal/metrics"
)

// Settings configures a breaker.
type Settings struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of trial requests allowed while half-open.
	HalfOpenRequests uint32
}

func newBreaker(s Settings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	threshold := max(s.ConsecutiveFailures, 1)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerStateChangesTotal.WithLabelValues(name, to.String()).Inc()
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isSuccessful,
	})
}

// isSuccessful counts only transport failures against the breaker.
// A malformed payload proves the service is up; cancellation is the caller's doing.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return !errors.Is(err, domain.ErrTransport)
}

func execute[T any](cb *gobreaker.CircuitBreaker, call func() (T, error)) (T, error) {
	var zero T
	out, err := cb.Execute(func() (any, error) {
		return call()
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return zero, fmt.Errorf("breaker %s: %w: %w: %w", cb.Name(), err, domain.ErrProviderUnavailable, domain.ErrTransport)
	case err != nil:
		return zero, err
	}
	return out.(T), nil
}

// Generator guards a domain.Generator.
type Generator struct {
	inner domain.Generator
	cb    *gobreaker.CircuitBreaker
}

// NewGenerator wraps inner with a circuit breaker.
func NewGenerator(inner domain.Generator, s Settings, logger *zap.Logger) *Generator {
	return &Generator{inner: inner, cb: newBreaker(s, logger)}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	return execute(g.cb, func() (domain.GenerationResult, error) {
		return g.inner.Generate(ctx, prompt)
	})
}

// State reports the breaker state (closed, half-open, open).
func (g *Generator) State() string { return g.cb.State().String() }

type lookup interface {
	Lookup(ctx context.Context, keyword string) (keyword.Metric, error)
}

// KeywordLookup guards the keyword metrics client.
type KeywordLookup struct {
	inner lookup
	cb    *gobreaker.CircuitBreaker
}

// NewKeywordLookup wraps inner with a circuit breaker.
func NewKeywordLookup(inner lookup, s Settings, logger *zap.Logger) *KeywordLookup {
	return &KeywordLookup{inner: inner, cb: newBreaker(s, logger)}
}

// Lookup fetches a keyword record through the breaker.
func (k *KeywordLookup) Lookup(ctx context.Context, kw string) (keyword.Metric, error) {
	return execute(k.cb, func() (keyword.Metric, error) {
		return k.inner.Lookup(ctx, kw)
	})
}

// State reports the breaker state (closed, half-open, open).
func (k *KeywordLookup) State() string { return k.cb.State().String() }
