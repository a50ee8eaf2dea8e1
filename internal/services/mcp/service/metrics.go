package service

import (
	"net/http"
	"time"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "flowise_mcp"

// Metrics owns the gateway's Prometheus registry. It implements
// domain.Recorder so the dispatcher can report calls without importing
// Prometheus.
type Metrics struct {
	registry       *prometheus.Registry
	toolCalls      *prometheus.CounterVec
	toolDuration   *prometheus.HistogramVec
	activeSessions prometheus.Gauge
}

var _ domain.Recorder = (*Metrics)(nil)

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "tool_calls_total",
				Help:      "Tool calls handled, by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Duration of tool calls in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"tool"},
		),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "MCP sessions currently open on the HTTP binding",
		}),
	}
	m.registry.MustRegister(m.toolCalls, m.toolDuration, m.activeSessions)
	return m
}

// ObserveToolCall records one finished tool call.
func (m *Metrics) ObserveToolCall(tool, outcome string, elapsed time.Duration) {
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// SetActiveSessions records the number of open sessions.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
