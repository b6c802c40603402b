// Package observability provides Prometheus metrics, an instrumented
// outbound HTTP transport, a metrics endpoint, and OpenTelemetry tracing for
// promptly providers and workflows.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Provider call outcomes used as the "status" label.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
)

var (
	// ProviderRequestsTotal counts provider calls by outcome. The status label
	// is "ok", "empty", or an error kind.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptly_provider_requests_total",
			Help: "Provider requests",
		},
		[]string{"provider", "model", "status"},
	)

	// ProviderLatency records provider call latency in seconds.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptly_provider_latency_seconds",
			Help:    "Provider latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// ProviderTokensTotal counts tokens by direction (input/output/cached/reasoning).
	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptly_provider_tokens_total",
			Help: "Token count",
		},
		[]string{"provider", "model", "direction"},
	)

	// ProviderDegradedTotal counts failures that were turned into empty
	// answers by the degrade failure policy.
	ProviderDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptly_provider_degraded_total",
			Help: "Provider failures degraded to empty answers",
		},
		[]string{"provider", "kind"},
	)

	// HTTPRequestsTotal counts outbound HTTP requests by method and status
	// class ("2xx", "4xx", "5xx", or "error" when no response arrived).
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptly_http_client_requests_total",
			Help: "Outbound HTTP requests",
		},
		[]string{"method", "status"},
	)

	// HTTPRequestDuration records outbound HTTP round trip duration in seconds.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptly_http_client_request_duration_seconds",
			Help:    "Outbound HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// WorkflowRunsTotal counts workflow executions by outcome ("completed" or "aborted").
	WorkflowRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptly_workflow_runs_total",
			Help: "Workflow runs",
		},
		[]string{"workflow", "outcome"},
	)

	// WorkflowPhaseDuration records the duration of each workflow phase in seconds.
	WorkflowPhaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptly_workflow_phase_duration_seconds",
			Help:    "Workflow phase duration",
			Buckets: LLMBuckets,
		},
		[]string{"workflow", "phase"},
	)

	// FanOutInFlight tracks provider calls currently running inside a fan-out phase.
	FanOutInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promptly_fanout_calls_in_flight",
			Help: "In-flight fan-out calls",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderLatency,
		ProviderTokensTotal,
		ProviderDegradedTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WorkflowRunsTotal,
		WorkflowPhaseDuration,
		FanOutInFlight,
	)
}
