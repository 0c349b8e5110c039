package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"onboard-gateway/internal/onboarding/flow"
	"onboard-gateway/internal/registration/handler/mocks"
	"onboard-gateway/internal/registration/models"
	"onboard-gateway/internal/registration/service"
	"onboard-gateway/internal/registration/store"
	dErrors "onboard-gateway/pkg/domain-errors"
	"onboard-gateway/pkg/platform/middleware/device"
	"onboard-gateway/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const (
	endpoint = "/api/onboarding/pending-registration"
	clientID = "6c1f9a52-2b7e-4f0e-9b61-3d8c2a4e5f70"
)

func newRouter(t *testing.T, svc Service) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger, nil, device.Config{CookieName: "onboarding_client"}, time.Second)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func validPayload() map[string]any {
	return map[string]any{
		"registration": map[string]any{
			"firstNameOrNickname": "Max",
			"lastName":            "Mustermann",
			"email":               "  MAX@Example.com ",
			"method":              "password",
			"password":            "correct horse",
		},
		"addressPreference":   "informal",
		"entry":               map[string]any{"answerId": "entry_5", "path": "C"},
		"path":                "C",
		"responses":           map[string]any{"thirdPersonName": "Oma Erna"},
		"neutralBlockVisited": true,
	}
}

func TestPendingRegistrationHandler(t *testing.T) {
	testutil.Given(t, "a valid payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		expiresAt := time.Date(2026, 5, 5, 10, 30, 0, 0, time.UTC)

		var got *models.SubmitRequest
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error) {
				got = req
				assert.Equal(t, clientID, device.GetClientID(ctx))
				return &models.SubmitResult{Token: "tok-1", ExpiresAt: expiresAt}, nil
			})

		req := testutil.NewJSONRequest(t, http.MethodPost, endpoint, validPayload())
		req.Header.Set(device.ClientIDHeader, clientID)
		rr := testutil.DoRequest(newRouter(t, svc), req)

		testutil.Then(t, "it returns the token and ISO expiry", func(t *testing.T) {
			testutil.AssertStatusOK(t, rr)
			resp := testutil.UnmarshalResponse[SubmitResponse](t, rr)
			assert.True(t, resp.Success)
			assert.Equal(t, "tok-1", resp.Token)
			assert.Equal(t, "2026-05-05T10:30:00.000Z", resp.ExpiresAt)
		})

		testutil.Then(t, "the decoded request reaches the service", func(t *testing.T) {
			require.NotNil(t, got)
			require.NotNil(t, got.Entry)
			assert.Equal(t, flow.EntryAnswer5, got.Entry.AnswerID)
			assert.Equal(t, flow.PathC, got.Path)
			require.NotNil(t, got.NeutralBlockVisited)
			assert.True(t, *got.NeutralBlockVisited)
		})
	})

	testutil.Given(t, "a malformed body", func(t *testing.T) {
		svc := mocks.NewMockService(gomock.NewController(t))

		rr := testutil.DoRequest(newRouter(t, svc),
			testutil.NewRequestWithBody(t, http.MethodPost, endpoint, `{"registration":`))

		testutil.Then(t, "it rejects without calling the service", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "Invalid payload")
			assert.NotContains(t, testutil.UnmarshalErrorResponse(t, rr), "error_description")
		})
	})

	testutil.Given(t, "a validation failure", func(t *testing.T) {
		svc := mocks.NewMockService(gomock.NewController(t))
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "email must be a valid email address"))

		rr := testutil.DoRequest(newRouter(t, svc),
			testutil.NewJSONRequest(t, http.MethodPost, endpoint, validPayload()))

		testutil.Then(t, "the reason is not disclosed", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "Invalid payload")
			assert.NotContains(t, rr.Body.String(), "email")
		})
	})

	testutil.Given(t, "a storage failure", func(t *testing.T) {
		svc := mocks.NewMockService(gomock.NewController(t))
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("connection refused"), dErrors.CodeInternal, "failed to store pending registration"))

		rr := testutil.DoRequest(newRouter(t, svc),
			testutil.NewJSONRequest(t, http.MethodPost, endpoint, validPayload()))

		testutil.Then(t, "it answers with a generic internal error", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "Internal error")
		})
	})

	testutil.Given(t, "a first-time visitor without a client id", func(t *testing.T) {
		svc := mocks.NewMockService(gomock.NewController(t))
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(&models.SubmitResult{Token: "tok", ExpiresAt: time.Now()}, nil)

		rr := testutil.DoRequest(newRouter(t, svc),
			testutil.NewJSONRequest(t, http.MethodPost, endpoint, validPayload()))

		testutil.Then(t, "a client cookie is issued", func(t *testing.T) {
			testutil.AssertStatusOK(t, rr)
			assert.NotNil(t, testutil.ResponseCookie(rr, "onboarding_client"))
		})
	})
}

func TestPendingRegistrationEndToEnd(t *testing.T) {
	pending := store.NewInMemory()
	svc := service.New(pending, service.WithPasswordHasher(func(string) (string, error) { return "hash", nil }))
	router := newRouter(t, svc)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, endpoint, validPayload()))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[SubmitResponse](t, rr)

	stored, err := pending.FindByToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "max@example.com", stored.Email)
	assert.Equal(t, flow.PathC, stored.Path)

	invalid := validPayload()
	invalid["path"] = "A"
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, endpoint, invalid))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "Invalid payload")

	all, err := pending.ListByEmail(context.Background(), "max@example.com")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
