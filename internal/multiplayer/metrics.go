package multiplayer

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the Prometheus collectors of one coordinator. They live in
// their own registry so several coordinators can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	sessions prometheus.Gauge
	lobbies  prometheus.Gauge
	matches  prometheus.Gauge
	ticks    prometheus.Counter
	finished *prometheus.CounterVec
	dropped  prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brix",
			Name:      "sessions",
			Help:      "Connected sessions.",
		}),
		lobbies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brix",
			Name:      "lobbies",
			Help:      "Lobbies waiting for an opponent.",
		}),
		matches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brix",
			Name:      "active_matches",
			Help:      "Online matches in progress.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brix",
			Name:      "ticks_total",
			Help:      "Simulation ticks run by online matches.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brix",
			Name:      "matches_finished_total",
			Help:      "Online matches finished, by end reason.",
		}, []string{"reason"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brix",
			Name:      "inputs_dropped_total",
			Help:      "Inputs dropped because a match input queue was full.",
		}),
	}
	m.registry.MustRegister(m.sessions, m.lobbies, m.matches, m.ticks, m.finished, m.dropped)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SessionOpened and SessionClosed track the sessions gauge.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

func (m *Metrics) SessionClosed() { m.sessions.Dec() }
