package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline and particle field metrics.
var (
	PipelineSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_submissions_total",
			Help:      "Prompt submissions by outcome",
		},
		[]string{"tool", "outcome"}, // success / failure / ignored / stale / closed
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Time from Loading to a settled state",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"tool"},
	)

	ParticlesLive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "particles_live",
			Help:      "Live particles per tool page",
		},
		[]string{"tool"},
	)

	ParticlesRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "particles_removed_total",
			Help:      "Particles removed by pointer hits",
		},
		[]string{"tool"},
	)
)
