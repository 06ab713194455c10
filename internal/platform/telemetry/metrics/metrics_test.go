package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return NewWithRegisterer(reg, reg)
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := newTestRegistry()
	r := chi.NewRouter()
	r.Use(m.Middleware("web"))
	r.Get("/api/profile/{username}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/profile/ada-lovelace", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("web", http.MethodGet, "/api/profile/{username}", "404"))
	assert.Equal(t, 1.0, got)
}

func TestMiddlewareDefaultsStatusToOK(t *testing.T) {
	m := newTestRegistry()
	r := chi.NewRouter()
	r.Use(m.Middleware("web"))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("web", http.MethodGet, "/healthz", "200")))
}

func TestObserveHelpers(t *testing.T) {
	m := newTestRegistry()
	m.ObserveORCID("works", OutcomeOK)
	m.ObserveORCID("works", OutcomeOK)
	m.ObservePublished("minimal")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ORCIDRequestsTotal.WithLabelValues("works", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProfilesPublished.WithLabelValues("minimal")))

	var nilRegistry *Registry
	assert.NotPanics(t, func() {
		nilRegistry.ObserveORCID("works", OutcomeError)
		nilRegistry.ObservePublished("minimal")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := newTestRegistry()
	m.ObserveORCID("person", OutcomeError)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `orcid_requests_total{endpoint="person",outcome="error"} 1`))
}
