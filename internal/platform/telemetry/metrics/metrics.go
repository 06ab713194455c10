package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ORCID request outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeRetried = "retried"
	OutcomeSkipped = "skipped"
)

// Registry owns the ScholarFlow collectors.
type Registry struct {
	gatherer prometheus.Gatherer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ORCIDRequestsTotal  *prometheus.CounterVec
	ProfilesPublished   *prometheus.CounterVec
}

// New registers collectors on a fresh registry, including Go runtime and
// process collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegisterer(reg, reg)
}

// NewWithRegisterer registers collectors on reg and serves them from gatherer.
func NewWithRegisterer(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		gatherer: gatherer,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "route"},
		),
		ORCIDRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orcid_requests_total",
				Help: "Requests made to the ORCID public API by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		ProfilesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profiles_published_total",
				Help: "Profiles saved with public visibility, by template",
			},
			[]string{"template"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	if r == nil || r.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// ObserveORCID counts one ORCID request outcome. Nil registries ignore calls.
func (r *Registry) ObserveORCID(endpoint, outcome string) {
	if r == nil {
		return
	}
	r.ORCIDRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// ObservePublished counts one profile saved as public.
func (r *Registry) ObservePublished(template string) {
	if r == nil {
		return
	}
	r.ProfilesPublished.WithLabelValues(template).Inc()
}

// Middleware records request count and latency by chi route pattern.
func (r *Registry) Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if r == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

			next.ServeHTTP(ww, req)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(req)
			r.HTTPRequestsTotal.WithLabelValues(service, req.Method, route, strconv.Itoa(status)).Inc()
			r.HTTPRequestDuration.WithLabelValues(service, req.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func routePattern(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
