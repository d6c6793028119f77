package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered once on the default registry so every layer can
// record without carrying a handle around.
var (
	// UpstreamRequests counts SOAP invocations per operation name.
	// Outcome is "ok", "rejected" (candidate name refused, next one is
	// tried) or "error" (transport failure).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcu_upstream_requests_total",
			Help: "SOAP invocations against the BCU services",
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamLatency observes successful invocation round-trip time.
	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bcu_upstream_latency_seconds",
			Help:    "Round-trip latency of successful SOAP invocations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// FallbackActivations counts latest-rate lookups that had to scan the
	// historical window because the last-closing service gave no answer.
	FallbackActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bcu_latest_fallback_activations_total",
			Help: "Latest-rate resolutions that fell back to the lookback scan",
		},
	)

	// Lookups counts API-level lookup outcomes: "hit", "miss" (no data for
	// the requested date) or "error".
	Lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcu_lookups_total",
			Help: "Rate lookup outcomes served by the API",
		},
		[]string{"endpoint", "outcome"},
	)
)
