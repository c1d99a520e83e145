package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the Prometheus registry the status server exposes,
// covering the resilience kernel, MCP calls, and runbook execution.
type Metrics struct {
	Registry *prometheus.Registry

	CircuitState   *prometheus.GaugeVec
	RetryAttempts  *prometheus.CounterVec
	DegradedFeatures *prometheus.GaugeVec
	OfflineQueueDepth prometheus.Gauge

	MCPCallDuration *prometheus.HistogramVec
	MCPCallErrors   *prometheus.CounterVec

	RunbookStepsRun  *prometheus.CounterVec
	RunbookFailures  *prometheus.CounterVec
}

// NewMetrics builds and registers the metrics on a fresh registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.NewRegistry())
}

// NewMetricsWithRegisterer builds the metrics against a caller-supplied
// registry, so tests can use an isolated prometheus.Registry.
func NewMetricsWithRegisterer(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Registry: reg,
		CircuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cmdforge_circuit_state",
			Help: "Circuit breaker state per feature (0=closed,1=open,2=half_open).",
		}, []string{"feature"}),
		RetryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cmdforge_retry_attempts_total",
			Help: "Total retry attempts per feature.",
		}, []string{"feature"}),
		DegradedFeatures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cmdforge_feature_degraded",
			Help: "Whether a feature is currently degraded (1) or not (0).",
		}, []string{"feature"}),
		OfflineQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cmdforge_offline_queue_depth",
			Help: "Number of operations queued while offline.",
		}),
		MCPCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "cmdforge_mcp_call_duration_seconds",
			Help: "MCP tool call latency.",
		}, []string{"server", "tool"}),
		MCPCallErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cmdforge_mcp_call_errors_total",
			Help: "MCP tool call errors.",
		}, []string{"server", "tool"}),
		RunbookStepsRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cmdforge_runbook_steps_total",
			Help: "Runbook steps executed, by outcome.",
		}, []string{"outcome"}),
		RunbookFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cmdforge_runbook_failures_total",
			Help: "Runbooks that failed to complete.",
		}, []string{"runbook"}),
	}

	reg.MustRegister(
		m.CircuitState,
		m.RetryAttempts,
		m.DegradedFeatures,
		m.OfflineQueueDepth,
		m.MCPCallDuration,
		m.MCPCallErrors,
		m.RunbookStepsRun,
		m.RunbookFailures,
	)

	return m
}
