// Package metrics provides Prometheus metrics for the dashboard gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts inbound requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures inbound request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nexus",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// BackendRequestsTotal counts outbound backend calls. status is "0"
	// when no response was received.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Name:      "backend_requests_total",
			Help:      "Total number of backend API calls",
		},
		[]string{"method", "status"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nexus",
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of backend API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// SignupTransitionsTotal counts signup outcomes by originating step and
	// destination.
	SignupTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Name:      "signup_transitions_total",
			Help:      "Total number of signup flow transitions",
		},
		[]string{"from", "to"},
	)

	// EnrichmentStepsTotal counts best-effort session enrichment steps.
	EnrichmentStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Name:      "session_enrichment_steps_total",
			Help:      "Total number of session enrichment steps by outcome",
		},
		[]string{"step", "outcome"},
	)

	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Name:      "token_refresh_total",
			Help:      "Total number of identity token refreshes",
		},
		[]string{"kind", "outcome"},
	)

	// ErrorsTotal counts errors by type.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nexus",
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"operation", "error_type"},
	)
)

// RecordHTTP records a served request.
func RecordHTTP(method, route, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// RecordBackend records an outbound backend call.
func RecordBackend(method, status string, duration float64) {
	BackendRequestsTotal.WithLabelValues(method, status).Inc()
	BackendRequestDuration.WithLabelValues(method).Observe(duration)
}

func RecordSignup(from, to string) {
	SignupTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordEnrichment(step string, ok bool) {
	EnrichmentStepsTotal.WithLabelValues(step, outcome(ok)).Inc()
}

func RecordRefresh(kind string, ok bool) {
	TokenRefreshTotal.WithLabelValues(kind, outcome(ok)).Inc()
}

// RecordError records an error.
func RecordError(operation, errorType string) {
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
