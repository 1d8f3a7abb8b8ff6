// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// registering the same collector twice panics
	once sync.Once

	// HTTPRequestsTotal counts finished requests. The route label is the
	// ServeMux pattern, never the raw path, to keep cardinality bounded.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// LinkOperations counts link operations by name and outcome
	// (ok, not_found, invalid, conflict, storage).
	LinkOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlinks_link_operations_total",
			Help: "Link operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	CodeCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_code_collisions_total",
			Help: "Generated short codes rejected by the uniqueness constraint.",
		},
	)

	// CacheLookups counts redirect cache reads by result (hit, miss, error).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlinks_cache_lookups_total",
			Help: "Redirect cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			LinkOperations,
			CodeCollisions,
			CacheLookups,
		)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
