package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()

	PipelineSubmissionsTotal.WithLabelValues("ideas", "success").Inc()
	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "boostube_pipeline_submissions_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Error("expected pipeline submissions to be exported")
	}
}

func TestParticleGauge(t *testing.T) {
	ParticlesLive.WithLabelValues("script").Set(50)
	ParticlesRemovedTotal.WithLabelValues("script").Add(3)

	if v := testutil.ToFloat64(ParticlesLive.WithLabelValues("script")); v != 50 {
		t.Errorf("particles_live = %v, want 50", v)
	}
	if v := testutil.ToFloat64(ParticlesRemovedTotal.WithLabelValues("script")); v < 3 {
		t.Errorf("particles_removed_total = %v, want >= 3", v)
	}
}
