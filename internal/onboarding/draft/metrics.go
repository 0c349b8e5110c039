package draft

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts self-healing resets and swallowed storage failures.
type Metrics struct {
	Resets        *prometheus.CounterVec
	WriteFailures *prometheus.CounterVec
}

// NewMetrics registers draft store metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_draft_resets_total",
			Help: "Stored onboarding drafts discarded on load, by reason",
		}, []string{"reason"}),
		WriteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_draft_storage_failures_total",
			Help: "Draft storage operations that failed and were swallowed",
		}, []string{"op"}),
	}
}

func (m *Metrics) incReset(reason string) {
	if m == nil {
		return
	}
	m.Resets.WithLabelValues(reason).Inc()
}

func (m *Metrics) incFailure(op string) {
	if m == nil {
		return
	}
	m.WriteFailures.WithLabelValues(op).Inc()
}
