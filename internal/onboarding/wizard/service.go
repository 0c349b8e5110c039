// Package wizard drives one client's onboarding draft through the step graph:
// choosing an entry answer, submitting steps, and leaving the neutral block.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"onboard-gateway/internal/onboarding/draft"
	"onboard-gateway/internal/onboarding/flow"
	"onboard-gateway/internal/platform/middleware"
	"onboard-gateway/internal/platform/tracing"
	dErrors "onboard-gateway/pkg/domain-errors"
	audit "onboard-gateway/pkg/platform/audit"
	"onboard-gateway/pkg/platform/middleware/metadata"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns draft transitions. Each call loads the client's draft, applies
// one action and persists the result; storage failures never fail a call.
type Service struct {
	kv           draft.KV
	graph        *flow.Graph
	logger       *slog.Logger
	metrics      *Metrics
	draftMetrics *draft.Metrics
	auditor      AuditPublisher
}

type Option func(*Service)

func WithGraph(g *flow.Graph) Option {
	return func(s *Service) {
		if g != nil {
			s.graph = g
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithDraftMetrics(m *draft.Metrics) Option {
	return func(s *Service) {
		s.draftMetrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// New constructs a Service. A nil kv behaves as unavailable storage: every
// load yields an empty draft and writes are dropped.
func New(kv draft.KV, opts ...Option) *Service {
	s := &Service{
		kv:     kv,
		graph:  flow.DefaultGraph(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Graph returns the step graph the service resolves against.
func (s *Service) Graph() *flow.Graph {
	return s.graph
}

func (s *Service) store(clientID string) *draft.Store {
	return draft.New(s.kv, draft.KeyFor(clientID),
		draft.WithGraph(s.graph),
		draft.WithLogger(s.logger),
		draft.WithMetrics(s.draftMetrics),
	)
}

// Current returns the client's draft, healed to Empty if it was unusable.
func (s *Service) Current(ctx context.Context, clientID string) (Snapshot, error) {
	if err := requireClient(clientID); err != nil {
		return Snapshot{}, err
	}
	return describe(s.graph, s.store(clientID).Load(ctx)), nil
}

// ChooseEntry starts a path from the entry answer. Earlier responses are
// discarded; a pending link token survives so a returning user can still
// finish an earlier registration.
func (s *Service) ChooseEntry(ctx context.Context, clientID string, answerID flow.EntryAnswerID) (Snapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.ChooseEntry",
		attribute.String("onboarding.entry", string(answerID)),
	)
	defer span.End()

	if err := requireClient(clientID); err != nil {
		return Snapshot{}, err
	}
	entry, err := flow.NewEntryAnswer(answerID)
	if err != nil {
		s.metrics.incRejection("invalid_entry")
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid entry answer")
	}
	first, ok := s.graph.FirstStep(entry.Path)
	if !ok {
		err := dErrors.New(dErrors.CodeInternal, "path has no steps")
		tracing.RecordError(span, err)
		return Snapshot{}, err
	}

	store := s.store(clientID)
	prev := store.Load(ctx)

	next := draft.Empty()
	next.PendingLinkToken = prev.PendingLinkToken
	path := entry.Path
	next.Path = &path
	next.Entry = &entry
	next.MoveTo(flow.PathStep(first.ID))
	store.Save(ctx, next)

	s.metrics.incEntry(entry.Path)
	s.emit(ctx, audit.EventEntryChosen, clientID, audit.Event{
		Path:     string(entry.Path),
		Decision: string(answerID),
	})
	return describe(s.graph, next), nil
}

// SubmitStep records the responses for the current step and follows the
// chosen option. Nothing is persisted unless the step is complete.
func (s *Service) SubmitStep(ctx context.Context, clientID, stepID, optionID string, responses map[string]any) (Snapshot, flow.Location, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.SubmitStep",
		attribute.String("onboarding.step", stepID),
		attribute.String("onboarding.option", optionID),
	)
	defer span.End()

	if err := requireClient(clientID); err != nil {
		return Snapshot{}, flow.Location{}, err
	}
	store := s.store(clientID)
	current := store.Load(ctx)

	if current.Stage != flow.StagePath {
		s.metrics.incRejection("not_on_path")
		return Snapshot{}, flow.Location{}, dErrors.New(dErrors.CodeInvalidState, "no step is in progress")
	}
	if current.StepID() != stepID {
		s.metrics.incRejection("stale_step")
		return Snapshot{}, flow.Location{}, dErrors.New(dErrors.CodeConflict, "step "+stepID+" is not the current step")
	}
	path := current.ActivePath()
	step, ok := s.graph.StepByID(path, stepID)
	if !ok {
		// Load only returns path-stage drafts whose step resolves.
		err := dErrors.New(dErrors.CodeInternal, "current step missing from graph")
		tracing.RecordError(span, err)
		return Snapshot{}, flow.Location{}, err
	}

	loc, err := flow.ResolveNextLocation(path, step, optionID)
	if err != nil {
		tracing.RecordError(span, err)
		s.metrics.incRejection("unknown_option")
		s.logger.ErrorContext(ctx, "transition option not declared on step",
			"request_id", middleware.GetRequestID(ctx),
			"path", path,
			"step_id", stepID,
			"option_id", optionID,
			"error", err,
		)
		s.emit(ctx, audit.EventTransitionRejected, clientID, audit.Event{
			Path:   string(path),
			Reason: "unknown_option",
		})
		if errors.Is(err, flow.ErrUnknownOption) {
			return Snapshot{}, flow.Location{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "option is not offered on this step")
		}
		return Snapshot{}, flow.Location{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve transition")
	}

	next := current.Clone()
	next.MergeResponses(responses)
	if missing := flow.MissingFields(step, next.Responses); len(missing) > 0 {
		s.metrics.incRejection("incomplete_step")
		return Snapshot{}, flow.Location{}, dErrors.New(dErrors.CodeValidation,
			"missing required fields: "+strings.Join(missing, ", "))
	}

	next.MoveTo(loc)
	store.Save(ctx, next)

	s.metrics.incTransition(path, loc.Stage)
	s.emit(ctx, audit.EventStepCompleted, clientID, audit.Event{
		Path:     string(path),
		Decision: optionID,
	})
	return describe(s.graph, next), loc, nil
}

// LeaveNeutral exits the neutral block. With resume set, the user returns to
// where the step they jumped from would have continued; otherwise, or when
// that step has nothing to resume, they go to registration.
func (s *Service) LeaveNeutral(ctx context.Context, clientID string, resume bool) (Snapshot, flow.Location, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.LeaveNeutral",
		attribute.Bool("onboarding.resume", resume),
	)
	defer span.End()

	if err := requireClient(clientID); err != nil {
		return Snapshot{}, flow.Location{}, err
	}
	store := s.store(clientID)
	current := store.Load(ctx)
	if current.Stage != flow.StageNeutral {
		s.metrics.incRejection("not_in_neutral")
		return Snapshot{}, flow.Location{}, dErrors.New(dErrors.CodeInvalidState, "neutral block is not active")
	}

	path := current.ActivePath()
	loc := flow.Registration()
	if resume {
		if step, ok := s.graph.StepByID(path, current.StepID()); ok && step.ResumeOptionID != "" {
			target, err := flow.ResolveNextLocation(path, step, step.ResumeOptionID)
			if err != nil {
				tracing.RecordError(span, err)
				return Snapshot{}, flow.Location{}, dErrors.Wrap(err, dErrors.CodeInternal, "resume option misconfigured")
			}
			if target.Stage != flow.StageNeutral {
				loc = target
			}
		}
	}

	next := current.Clone()
	next.MoveTo(loc)
	store.Save(ctx, next)

	s.metrics.incTransition(path, loc.Stage)
	s.emit(ctx, audit.EventNeutralExited, clientID, audit.Event{
		Path:     string(path),
		Decision: string(loc.Stage),
	})
	return describe(s.graph, next), loc, nil
}

// Abandon discards the client's draft at the user's request.
func (s *Service) Abandon(ctx context.Context, clientID string) error {
	if err := requireClient(clientID); err != nil {
		return err
	}
	s.store(clientID).Clear(ctx)
	s.emit(ctx, audit.EventDraftAbandoned, clientID, audit.Event{})
	return nil
}

// Clear removes the client's draft after a successful registration handoff.
func (s *Service) Clear(ctx context.Context, clientID string) {
	if clientID == "" {
		return
	}
	s.store(clientID).Clear(ctx)
}

func requireClient(clientID string) error {
	if clientID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "missing onboarding client id")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, clientID string, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Action = string(action)
	event.Subject = clientID
	event.RequestID = middleware.GetRequestID(ctx)
	event.ClientIP = metadata.GetClientIP(ctx)
	event.DeviceName = metadata.GetDeviceName(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"error", err,
		)
	}
}
