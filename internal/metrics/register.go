package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// Register registers every boostube collector with the default registry. Must be called from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			GenerationRequestsTotal,
			GenerationRequestDuration,
			GenerationTokensTotal,
			GenerationErrorsTotal,
			GenerationCacheTotal,
			KeywordRequestsTotal,
			BreakerStateChangesTotal,
			PipelineSubmissionsTotal,
			PipelineDuration,
			ParticlesLive,
			ParticlesRemovedTotal,
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
		)
	})
}
