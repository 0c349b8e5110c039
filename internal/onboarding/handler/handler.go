package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"onboard-gateway/internal/onboarding/flow"
	"onboard-gateway/internal/onboarding/wizard"
	"onboard-gateway/internal/platform/metrics"
	"onboard-gateway/internal/platform/middleware"
	dErrors "onboard-gateway/pkg/domain-errors"
	"onboard-gateway/pkg/platform/httputil"
	"onboard-gateway/pkg/platform/middleware/device"
	"onboard-gateway/pkg/platform/middleware/metadata"
)

// maxBodyBytes bounds request bodies; step responses are persisted in the draft.
const maxBodyBytes = 64 << 10

// Service defines the wizard operations exposed over HTTP.
type Service interface {
	Current(ctx context.Context, clientID string) (wizard.Snapshot, error)
	ChooseEntry(ctx context.Context, clientID string, answerID flow.EntryAnswerID) (wizard.Snapshot, error)
	SubmitStep(ctx context.Context, clientID, stepID, optionID string, responses map[string]any) (wizard.Snapshot, flow.Location, error)
	LeaveNeutral(ctx context.Context, clientID string, resume bool) (wizard.Snapshot, flow.Location, error)
	Abandon(ctx context.Context, clientID string) error
}

// Handler serves the onboarding wizard endpoints.
type Handler struct {
	wizard         Service
	logger         *slog.Logger
	metrics        *metrics.Metrics
	device         device.Config
	requestTimeout time.Duration
}

// New creates a new onboarding Handler.
func New(svc Service, logger *slog.Logger, m *metrics.Metrics, deviceCfg device.Config, requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handler{
		wizard:         svc,
		logger:         logger,
		metrics:        m,
		device:         deviceCfg,
		requestTimeout: requestTimeout,
	}
}

// Register registers the onboarding routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	onboardingRouter := chi.NewRouter()
	onboardingRouter.Use(middleware.Recovery(h.logger))
	onboardingRouter.Use(middleware.RequestID)
	onboardingRouter.Use(middleware.Logger(h.logger))
	onboardingRouter.Use(middleware.Timeout(h.requestTimeout))
	onboardingRouter.Use(middleware.ContentTypeJSON)
	onboardingRouter.Use(middleware.LatencyMiddleware(h.metrics))
	onboardingRouter.Use(metadata.ClientMetadata)
	onboardingRouter.Use(device.ClientID(h.device))
	onboardingRouter.Get("/draft", h.handleGetDraft)
	onboardingRouter.Delete("/draft", h.handleAbandon)
	onboardingRouter.Post("/entry", h.handleChooseEntry)
	onboardingRouter.Post("/steps/{stepID}", h.handleSubmitStep)
	onboardingRouter.Post("/neutral/exit", h.handleLeaveNeutral)

	r.Mount("/onboarding", onboardingRouter)
}

func (h *Handler) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := h.wizard.Current(ctx, device.GetClientID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load draft", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(snap, nil))
}

func (h *Handler) handleChooseEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChooseEntryRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, err := h.wizard.ChooseEntry(ctx, device.GetClientID(ctx), req.AnswerID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to choose entry answer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(snap, nil))
}

func (h *Handler) handleSubmitStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stepID := chi.URLParam(r, "stepID")

	var req SubmitStepRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OptionID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "optionId is required"))
		return
	}

	snap, loc, err := h.wizard.SubmitStep(ctx, device.GetClientID(ctx), stepID, req.OptionID, req.Responses)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to submit step", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(snap, &loc))
}

func (h *Handler) handleLeaveNeutral(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LeaveNeutralRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, loc, err := h.wizard.LeaveNeutral(ctx, device.GetClientID(ctx), req.Resume)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to leave neutral block", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(snap, &loc))
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.wizard.Abandon(ctx, device.GetClientID(ctx)); err != nil {
		h.writeServiceError(ctx, w, "failed to abandon draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid onboarding request body",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := httputil.StatusFor(dErrors.CodeOf(err))
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"client_id", device.GetClientID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"client_id", device.GetClientID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
