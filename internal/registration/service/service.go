package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"onboard-gateway/internal/platform/middleware"
	"onboard-gateway/internal/platform/tracing"
	"onboard-gateway/internal/registration/models"
	dErrors "onboard-gateway/pkg/domain-errors"
	audit "onboard-gateway/pkg/platform/audit"
	"onboard-gateway/pkg/platform/middleware/device"
	"onboard-gateway/pkg/platform/middleware/metadata"
	"onboard-gateway/pkg/platform/sentinel"
	"onboard-gateway/pkg/secrets"
)

// DefaultTTL is how long a pending registration can be redeemed.
const DefaultTTL = 24 * time.Hour

const maxTokenAttempts = 3

// Store persists pending registrations. ExpirePending and Insert are called in
// sequence without a transaction.
type Store interface {
	ExpirePending(ctx context.Context, email string, now time.Time) (int64, error)
	Insert(ctx context.Context, p *models.PendingRegistration) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// DraftClearer drops the submitting client's onboarding draft once its
// content has been committed server-side.
type DraftClearer interface {
	Clear(ctx context.Context, clientID string)
}

// Service validates registration payloads and stores them as pending
// registrations addressed by an opaque token.
//
// Two submissions for the same email racing each other can each expire the
// other's freshly inserted row. Registration is human-paced, so this is
// accepted rather than serialized.
type Service struct {
	store        Store
	ttl          time.Duration
	now          func() time.Time
	newToken     func() (string, error)
	hashPassword func(string) (string, error)
	logger       *slog.Logger
	metrics      *Metrics
	auditor      AuditPublisher
	drafts       DraftClearer
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithTokenGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = fn
	}
}

func WithPasswordHasher(fn func(string) (string, error)) Option {
	return func(s *Service) {
		s.hashPassword = fn
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

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithDraftClearer(d DraftClearer) Option {
	return func(s *Service) {
		s.drafts = d
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		ttl:          DefaultTTL,
		now:          time.Now,
		newToken:     secrets.GenerateToken,
		hashPassword: secrets.HashPassword,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the payload, expires earlier pending registrations for the
// same email and stores a new one. Invalid payloads never reach the store.
func (s *Service) Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "registration.Submit")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.observe("invalid", start)
		s.emit(ctx, audit.EventRegistrationInvalid, audit.Event{Reason: dErrors.MessageOf(err)})
		return nil, err
	}
	reg := req.Registration
	span.SetAttributes(
		attribute.String("onboarding.path", string(req.Path)),
		attribute.String("registration.method", string(reg.Method)),
	)

	var passwordHash string
	if reg.Method.RequiresPassword() {
		hash, err := s.hashPassword(reg.Password)
		if err != nil {
			tracing.RecordError(span, err)
			s.metrics.observe("error", start)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		passwordHash = hash
	}

	now := s.now().UTC()
	pending := &models.PendingRegistration{
		ID:                  uuid.New(),
		Email:               reg.Email,
		FirstNameOrNickname: reg.FirstNameOrNickname,
		LastName:            reg.LastName,
		Method:              reg.Method,
		PasswordHash:        passwordHash,
		AddressPreference:   req.AddressPreference,
		EntryAnswerID:       req.Entry.AnswerID,
		Path:                req.Path,
		Responses:           req.Responses,
		NeutralBlockVisited: *req.NeutralBlockVisited,
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.ttl),
	}

	expired, err := s.store.ExpirePending(ctx, pending.Email, now)
	if err != nil {
		tracing.RecordError(span, err)
		s.metrics.observe("error", start)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to expire pending registrations")
	}
	s.metrics.addSuperseded(expired)

	if err := s.insert(ctx, pending); err != nil {
		tracing.RecordError(span, err)
		s.metrics.observe("error", start)
		return nil, err
	}

	s.metrics.observe("created", start)
	s.logger.InfoContext(ctx, "pending registration created",
		"request_id", middleware.GetRequestID(ctx),
		"registration_id", pending.ID,
		"path", pending.Path,
		"superseded", expired,
	)
	s.emit(ctx, audit.EventPendingRegistrationCreated, audit.Event{
		Subject:     pending.ID.String(),
		SubjectHash: audit.HashIdentifier(pending.Email),
		Path:        string(pending.Path),
		Decision:    string(pending.Method),
	})
	if s.drafts != nil {
		s.drafts.Clear(ctx, device.GetClientID(ctx))
	}

	return &models.SubmitResult{Token: pending.Token, ExpiresAt: pending.ExpiresAt}, nil
}

// insert retries with a fresh token when the store reports a token collision.
func (s *Service) insert(ctx context.Context, pending *models.PendingRegistration) error {
	for attempt := 1; ; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token")
		}
		pending.Token = token

		err = s.store.Insert(ctx, pending)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sentinel.ErrConflict) || attempt == maxTokenAttempts {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store pending registration")
		}
		s.logger.WarnContext(ctx, "pending registration token collision, retrying",
			"request_id", middleware.GetRequestID(ctx),
			"attempt", attempt,
		)
	}
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Action = string(action)
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
