// Package metrics exposes session and guard counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/jrsteele09/mentor-portal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mentorportal"

// Recorder collects the application metrics on its own registry
type Recorder struct {
	registry       *prometheus.Registry
	operations     *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

var (
	_ session.Recorder      = (*Recorder)(nil)
	_ session.GaugeRecorder = (*Recorder)(nil)
)

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_operations_total",
			Help:      "Session store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard decisions by kind.",
		}, []string{"kind"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "browser_sessions",
			Help:      "Browser sessions currently held in memory.",
		}),
	}

	r.registry.MustRegister(
		r.operations,
		r.guardDecisions,
		r.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) OperationCompleted(op session.Op, outcome string) {
	r.operations.WithLabelValues(string(op), outcome).Inc()
}

func (r *Recorder) ActiveSessions(n int) {
	r.activeSessions.Set(float64(n))
}

// GuardDecision counts a route guard outcome
func (r *Recorder) GuardDecision(kind string) {
	r.guardDecisions.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
