package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// breakerOpen is the state name of a breaker failing calls fast.
const breakerOpen = "open"

// Service coordinates health checks.
type Service struct {
	cache      CachePinger
	generation ProviderChecker
	breakers   map[string]BreakerState
}

// Option configures a Service.
type Option func(*Service)

// WithBreaker reports breaker b as check "breaker_<name>". An open breaker
// degrades the report; closed and half-open pass.
func WithBreaker(name string, b BreakerState) Option {
	return func(s *Service) {
		if b != nil {
			s.breakers[name] = b
		}
	}
}

// New creates a Service. Both components are optional: the cache is absent
// unless enabled, and providers without a cheap availability check pass nil.
func New(cache CachePinger, generation ProviderChecker, opts ...Option) *Service {
	s := &Service{
		cache:      cache,
		generation: generation,
		breakers:   make(map[string]BreakerState),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}
	if s.generation != nil {
		checks["generation"] = result(s.generation.HealthCheck(ctx))
	}
	for name, b := range s.breakers {
		res := CheckOK
		if b.State() == breakerOpen {
			res = CheckError
		}
		checks["breaker_"+name] = res
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
