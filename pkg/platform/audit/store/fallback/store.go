// Package fallback routes audit events to a primary store guarded by a
// circuit breaker and diverts them to a secondary store while it is open.
package fallback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "onboard-gateway/pkg/platform/audit"
	"onboard-gateway/pkg/platform/circuit"
)

// Metrics tracks diverted events and the breaker state.
type Metrics struct {
	Diverted     prometheus.Counter
	BreakerState prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Diverted: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_audit_fallback_events_total",
			Help: "Audit events written to the fallback store",
		}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "onboard_audit_breaker_state",
			Help: "Primary audit sink circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) incDiverted() {
	if m == nil {
		return
	}
	m.Diverted.Inc()
}

func (m *Metrics) setOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
		return
	}
	m.BreakerState.Set(0)
}

type Store struct {
	primary   audit.Store
	secondary audit.Store
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func New(primary, secondary audit.Store, breaker *circuit.Breaker, opts ...Option) *Store {
	s := &Store{
		primary:   primary,
		secondary: secondary,
		breaker:   breaker,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append tries the primary when the breaker allows it. A failed primary write
// is retried on the secondary; the error is only returned if both fail.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if !s.breaker.Allow() {
		return s.divert(ctx, event, nil)
	}

	err := s.primary.Append(ctx, event)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.metrics.setOpen(false)
			s.logger.InfoContext(ctx, "audit sink recovered", "breaker", s.breaker.Name())
		}
		return nil
	}

	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.metrics.setOpen(true)
		s.logger.WarnContext(ctx, "audit sink unhealthy, diverting events",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
	return s.divert(ctx, event, err)
}

func (s *Store) divert(ctx context.Context, event audit.Event, primaryErr error) error {
	s.metrics.incDiverted()
	if err := s.secondary.Append(ctx, event); err != nil {
		return errors.Join(primaryErr, err)
	}
	return nil
}
