package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	// RequestsTotal counts HTTP requests by method, path and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes HTTP request latency.
	RequestDuration *prometheus.HistogramVec

	// ToolCallsTotal counts MCP tool invocations by outcome.
	ToolCallsTotal *prometheus.CounterVec

	// ToolDuration observes tool invocation latency, including the round
	// trip to the stats API.
	ToolDuration *prometheus.HistogramVec
)

func init() {
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statbridge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "statbridge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statbridge",
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "Total MCP tool invocations",
		},
		[]string{"tool_name", "status"},
	)

	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "statbridge",
			Subsystem: "mcp",
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"tool_name"},
	)

	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ToolCallsTotal)
	prometheus.MustRegister(ToolDuration)
	log.Debug().Msg("statbridge metrics registered with Prometheus")
}

// RecordRequest records one HTTP request.
func RecordRequest(method, path, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, path, status).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(durationSec)
}

// RecordToolCall records one MCP tool invocation.
func RecordToolCall(toolName, status string, durationSec float64) {
	if status == "" {
		status = "unknown"
	}
	ToolCallsTotal.WithLabelValues(toolName, status).Inc()
	ToolDuration.WithLabelValues(toolName).Observe(durationSec)
}
