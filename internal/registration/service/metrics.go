package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for pending registration submission.
type Metrics struct {
	Submissions    *prometheus.CounterVec
	SubmitDuration prometheus.Histogram
	Superseded     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_pending_registrations_total",
			Help: "Pending registration submissions, by outcome",
		}, []string{"outcome"}),
		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_pending_registration_submit_seconds",
			Help:    "Time to validate and store a pending registration",
			Buckets: prometheus.DefBuckets,
		}),
		Superseded: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_pending_registrations_superseded_total",
			Help: "Earlier pending registrations expired by a newer submission for the same email",
		}),
	}
}

func (m *Metrics) observe(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) addSuperseded(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.Superseded.Add(float64(n))
}
