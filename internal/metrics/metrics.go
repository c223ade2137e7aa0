// Package metrics exposes game counters in Prometheus format.
// Every Metrics value owns its registry, so nothing leaks into the
// process-global default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robalobadob/mastermind/internal/engine"
)

const namespace = "mastermind"

// Metrics counts rounds, outcomes and wire traffic for one process.
type Metrics struct {
	reg          *prometheus.Registry
	rounds       prometheus.Counter
	parityFaults prometheus.Counter
	lastExact    prometheus.Gauge
	games        *prometheus.CounterVec
	bytes        *prometheus.CounterVec
}

// New builds the collectors for role ("judge" or "guesser").
func New(role string) *Metrics {
	labels := prometheus.Labels{"role": role}
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rounds_total",
			Help:        "Guess/judgment exchanges completed.",
			ConstLabels: labels,
		}),
		parityFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "parity_errors_total",
			Help:        "Judgments sent or received with the parity error flag.",
			ConstLabels: labels,
		}),
		lastExact: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_exact_matches",
			Help:        "Exact matches in the most recent judgment.",
			ConstLabels: labels,
		}),
		games: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "games_total",
			Help:        "Finished games by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "transport_bytes_total",
			Help:        "Bytes moved over the game connection.",
			ConstLabels: labels,
		}, []string{"direction"}),
	}
	m.reg.MustRegister(m.rounds, m.parityFaults, m.lastExact, m.games, m.bytes)
	return m
}

// RoundPlayed implements engine.Observer.
func (m *Metrics) RoundPlayed(r engine.Round) {
	m.rounds.Inc()
	m.lastExact.Set(float64(r.Judgment.Exact))
	if r.Judgment.ParityError {
		m.parityFaults.Inc()
	}
}

// GameFinished implements engine.Observer.
func (m *Metrics) GameFinished(res engine.Result) {
	m.games.WithLabelValues(res.Outcome.String()).Inc()
}

// BytesRead implements transport.Stats.
func (m *Metrics) BytesRead(n int) { m.bytes.WithLabelValues("in").Add(float64(n)) }

// BytesWritten implements transport.Stats.
func (m *Metrics) BytesWritten(n int) { m.bytes.WithLabelValues("out").Add(float64(n)) }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
