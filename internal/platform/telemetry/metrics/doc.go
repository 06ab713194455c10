// Package metrics provides operational metrics collection.
//
// Collectors are registered against a caller-provided Prometheus registry so
// the server and tests can each own one. The HTTP middleware records request
// counts and latency by route pattern; the ORCID client records upstream
// request outcomes.
//
// # Metric names
//
//   - http_requests_total{service,method,route,status}
//   - http_request_duration_seconds{service,method,route}
//   - orcid_requests_total{endpoint,outcome}
//   - profiles_published_total{template}
package metrics
