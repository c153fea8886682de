// Package metrics holds the Prometheus collectors shared by the server components.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// GatewayRequests counts upstream HTTP attempts by endpoint template and status code.
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessie_gateway_requests_total",
			Help: "Upstream API attempts by endpoint and HTTP status.",
		},
		[]string{"endpoint", "code"}, // code: HTTP status, or "timeout"/"error"
	)

	// GatewayRetries counts retried attempts.
	GatewayRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessie_gateway_retries_total",
			Help: "Upstream API retries by reason.",
		},
		[]string{"reason"}, // reason: rate_limited/timeout
	)

	GatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tessie_gateway_request_duration_seconds",
			Help:    "Latency of a logical upstream request, retries included.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CacheReads counts snapshot reads served from cache (hit) or after a refresh (miss).
	CacheReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessie_cache_reads_total",
			Help: "Telemetry snapshot reads by result.",
		},
		[]string{"result"},
	)

	CacheRefreshFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tessie_cache_refresh_failures_total",
			Help: "Failed snapshot refreshes.",
		},
	)

	// SnapshotAge is the age of the snapshot observed by the latest read.
	SnapshotAge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tessie_cache_snapshot_age_seconds",
			Help: "Age of the cached vehicle snapshot at the latest read.",
		},
	)

	ToolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tessie_tool_calls_total",
			Help: "Tool invocations by tool name and outcome.",
		},
		[]string{"tool", "outcome"}, // outcome: ok/error/unknown_tool
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tessie_mcp_sessions",
			Help: "Open protocol sessions.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		GatewayRequests,
		GatewayRetries,
		GatewayLatency,
		CacheReads,
		CacheRefreshFailures,
		SnapshotAge,
		ToolCalls,
		ActiveSessions,
	)
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
