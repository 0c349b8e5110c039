package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"onboard-gateway/internal/platform/metrics"
	"onboard-gateway/internal/platform/middleware"
	"onboard-gateway/internal/registration/models"
	dErrors "onboard-gateway/pkg/domain-errors"
	"onboard-gateway/pkg/platform/httputil"
	"onboard-gateway/pkg/platform/middleware/device"
	"onboard-gateway/pkg/platform/middleware/metadata"
)

// ExpiresAtLayout is the ISO-8601 UTC form used for expiresAt.
const ExpiresAtLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	errInvalidPayload = "Invalid payload"
	errInternal       = "Internal error"
)

// maxBodyBytes bounds the registration payload; the responses map is the only
// open-ended part.
const maxBodyBytes = 64 << 10

type Service interface {
	Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error)
}

// SubmitResponse is the success body of the pending registration endpoint.
type SubmitResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// Handler serves the pending registration endpoint.
type Handler struct {
	registration   Service
	logger         *slog.Logger
	metrics        *metrics.Metrics
	device         device.Config
	requestTimeout time.Duration
}

func New(svc Service, logger *slog.Logger, m *metrics.Metrics, deviceCfg device.Config, requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handler{
		registration:   svc,
		logger:         logger,
		metrics:        m,
		device:         deviceCfg,
		requestTimeout: requestTimeout,
	}
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	registrationRouter := chi.NewRouter()
	registrationRouter.Use(middleware.Recovery(h.logger))
	registrationRouter.Use(middleware.RequestID)
	registrationRouter.Use(middleware.Logger(h.logger))
	registrationRouter.Use(middleware.Timeout(h.requestTimeout))
	registrationRouter.Use(middleware.ContentTypeJSON)
	registrationRouter.Use(middleware.LatencyMiddleware(h.metrics))
	registrationRouter.Use(metadata.ClientMetadata)
	registrationRouter.Use(device.ClientID(h.device))
	registrationRouter.Post("/pending-registration", h.handleSubmit)

	r.Mount("/api/onboarding", registrationRouter)
}

// handleSubmit answers every rejected payload with the same opaque body so
// callers cannot probe which field failed.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid pending registration body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: errInvalidPayload})
		return
	}

	result, err := h.registration.Submit(ctx, &req)
	if err != nil {
		if status := httputil.StatusFor(dErrors.CodeOf(err)); status == http.StatusBadRequest {
			h.logger.WarnContext(ctx, "rejected pending registration",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: errInvalidPayload})
			return
		}
		h.logger.ErrorContext(ctx, "failed to create pending registration",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: errInternal})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SubmitResponse{
		Success:   true,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(ExpiresAtLayout),
	})
}
