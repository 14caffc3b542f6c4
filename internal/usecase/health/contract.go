package health

import "context"

// CachePinger checks response cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks generation provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// BreakerState reports a circuit breaker state (closed, half-open, open).
type BreakerState interface {
	State() string
}
