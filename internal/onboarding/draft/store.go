package draft

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"onboard-gateway/internal/onboarding/flow"
	"onboard-gateway/pkg/platform/sentinel"
)

// KV is the key-value storage a draft is persisted in.
// Get returns sentinel.ErrNotFound when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store persists one draft under one key.
//
// A nil KV means storage is unavailable: Load returns Empty and Save/Clear do
// nothing. Storage failures are logged and swallowed; the caller's in-memory
// draft stays authoritative for the session.
type Store struct {
	kv      KV
	key     string
	graph   *flow.Graph
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Store)

func WithGraph(g *flow.Graph) Option {
	return func(s *Store) {
		if g != nil {
			s.graph = g
		}
	}
}

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

// New creates a Store bound to key. An empty key falls back to DefaultKey.
func New(kv KV, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		kv:     kv,
		key:    key,
		graph:  flow.DefaultGraph(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key this store is bound to.
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored draft, or Empty if it is absent, unreadable, from
// another schema version, or structurally inconsistent with the step graph.
func (s *Store) Load(ctx context.Context) Draft {
	if s.kv == nil {
		return Empty()
	}
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.incFailure("load")
			s.logger.WarnContext(ctx, "draft storage unavailable on load",
				"key", s.key,
				"error", err,
			)
		}
		return Empty()
	}
	d, reason := decode(raw, s.graph)
	if reason != "" {
		s.metrics.incReset(reason)
		s.logger.DebugContext(ctx, "discarding stored draft",
			"key", s.key,
			"reason", reason,
		)
	}
	return d
}

// Save writes the draft verbatim. Failures are swallowed.
func (s *Store) Save(ctx context.Context, d Draft) {
	if s.kv == nil {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		s.metrics.incFailure("save")
		s.logger.WarnContext(ctx, "draft not serializable",
			"key", s.key,
			"error", err,
		)
		return
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.metrics.incFailure("save")
		s.logger.WarnContext(ctx, "draft save failed",
			"key", s.key,
			"error", err,
		)
	}
}

// Clear removes the stored draft. Failures are swallowed.
func (s *Store) Clear(ctx context.Context) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.metrics.incFailure("clear")
		s.logger.WarnContext(ctx, "draft clear failed",
			"key", s.key,
			"error", err,
		)
	}
}
