// Package metrics holds the Prometheus collectors shared by every service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts HTTP requests by service, route template and status code.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "awsdocs_http_requests_total",
		Help: "Number of HTTP requests served.",
	}, []string{"service", "method", "route", "code"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "awsdocs_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "route"})

	// ProviderErrors counts listing-level failures of cloud API calls by error type.
	ProviderErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "awsdocs_provider_errors_total",
		Help: "Number of failed listing calls against the cloud API.",
	}, []string{"service", "type"})

	// DegradedAttributes counts per-attribute lookups that fell back to a default.
	DegradedAttributes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "awsdocs_degraded_attributes_total",
		Help: "Number of attribute lookups that failed and were replaced by their default.",
	}, []string{"attribute"})

	// SnapshotUpdated is the unix time of the last listing kept for each
	// snapshot, so stale data can be spotted before it is filtered.
	SnapshotUpdated = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "awsdocs_snapshot_updated_timestamp_seconds",
		Help: "Unix time at which each listing snapshot was last replaced.",
	}, []string{"snapshot"})

	// SessionsCreated counts successful role assumptions.
	SessionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "awsdocs_sessions_created_total",
		Help: "Number of sessions created by role assumption.",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ProviderErrors)
	prometheus.MustRegister(DegradedAttributes)
	prometheus.MustRegister(SnapshotUpdated)
	prometheus.MustRegister(SessionsCreated)
}
