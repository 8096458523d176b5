package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream catalog API
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelhound_upstream_requests_total",
			Help: "Requests issued to the upstream catalog API",
		},
		[]string{"endpoint", "outcome"}, // outcome: "success", "http_error", "transport_error", "decode_error"
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelhound_upstream_request_duration_seconds",
			Help:    "Latency of upstream catalog API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Preference store
	PreferencePersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelhound_preference_persist_failures_total",
			Help: "Failed writes of the favorites or ratings collections",
		},
		[]string{"collection"},
	)

	PreferenceMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelhound_preference_mutations_total",
			Help: "Favorite and rating changes applied to the preference store",
		},
		[]string{"operation"},
	)

	// HTTP API
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelhound_http_requests_total",
			Help: "HTTP requests served by the API",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelhound_http_request_duration_seconds",
			Help:    "Latency of HTTP requests served by the API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
