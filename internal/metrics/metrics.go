// Package metrics exposes Prometheus collectors for the preview service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"method", "route"},
	)

	previewResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_responses_total",
			Help: "Total number of preview responses, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	previewLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_lookups_total",
			Help: "Total number of article lookups, labeled by field and result.",
		},
		[]string{"field", "result"},
	)

	previewCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_cache_total",
			Help: "Total number of article cache operations, labeled by result.",
		},
		[]string{"result"},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObservePreview counts a resolver outcome.
func ObservePreview(outcome string) {
	previewResponsesTotal.WithLabelValues(outcome).Inc()
}

// ObserveLookup counts an article lookup; result is found, not_found or error.
func ObserveLookup(field, result string) {
	previewLookupsTotal.WithLabelValues(field, result).Inc()
}

// ObserveCache counts a cache hit, miss or error.
func ObserveCache(result string) {
	previewCacheTotal.WithLabelValues(result).Inc()
}
