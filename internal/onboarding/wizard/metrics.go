package wizard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"onboard-gateway/internal/onboarding/flow"
)

// Metrics tracks how users move through the step graph.
type Metrics struct {
	EntriesChosen *prometheus.CounterVec
	Transitions   *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EntriesChosen: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_wizard_entries_total",
			Help: "Entry answers chosen, by resulting path",
		}, []string{"path"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_wizard_transitions_total",
			Help: "Resolved transitions, by path and target stage",
		}, []string{"path", "stage"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_wizard_rejections_total",
			Help: "Wizard actions rejected, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) incEntry(path flow.Path) {
	if m == nil {
		return
	}
	m.EntriesChosen.WithLabelValues(string(path)).Inc()
}

func (m *Metrics) incTransition(path flow.Path, stage flow.Stage) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(string(path), string(stage)).Inc()
}

func (m *Metrics) incRejection(reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(reason).Inc()
}
