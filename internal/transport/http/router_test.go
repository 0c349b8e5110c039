package httptransport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard-gateway/pkg/testutil"
)

type pingRegistrar struct{}

func (pingRegistrar) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestNewRouter(t *testing.T) {
	t.Run("mounts feature handlers", func(t *testing.T) {
		router := NewRouter(RouterDeps{Handlers: []Registrar{pingRegistrar{}}})

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ping"))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	t.Run("health is ok when every check passes", func(t *testing.T) {
		router := NewRouter(RouterDeps{Checks: map[string]HealthCheck{
			"redis": func(context.Context) error { return nil },
		}})

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Checks["redis"])
	})

	t.Run("health degrades when a check fails", func(t *testing.T) {
		router := NewRouter(RouterDeps{Checks: map[string]HealthCheck{
			"redis":    func(context.Context) error { return nil },
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		}})

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		resp := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["postgres"])
	})

	t.Run("exposes prometheus metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "onboard_test_total", Help: "test"})
		require.NoError(t, reg.Register(counter))
		counter.Inc()

		router := NewRouter(RouterDeps{Gatherer: reg})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

		testutil.AssertStatusOK(t, rr)
		assert.Contains(t, rr.Body.String(), "onboard_test_total 1")
	})
}
