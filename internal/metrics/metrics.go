// Package metrics exposes Prometheus instrumentation for the price pipeline.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for fetch attempts and simulations.
const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeStatus       = "bad_status"
	OutcomeMalformed    = "malformed"
	OutcomeEmpty        = "empty"
	OutcomeNoData       = "no_data"
	OutcomeInsufficient = "insufficient_history"
	OutcomeInvalid      = "invalid"
)

// Metrics holds all Prometheus collectors for the simulator.
type Metrics struct {
	FetchAttempts *prometheus.CounterVec // labels: endpoint, outcome
	FetchDuration *prometheus.HistogramVec
	CacheLookups  *prometheus.CounterVec // labels: result=hit|miss
	Simulations   *prometheus.CounterVec // labels: outcome

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotsim_fetch_attempts_total",
			Help: "Kline fetch attempts per endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spotsim_fetch_duration_seconds",
			Help:    "Kline fetch latency per endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotsim_cache_lookups_total",
			Help: "Price cache lookups by result",
		}, []string{"result"}),
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotsim_simulations_total",
			Help: "Simulations by outcome",
		}, []string{"outcome"}),
		gatherer: reg,
	}
	reg.MustRegister(m.FetchAttempts, m.FetchDuration, m.CacheLookups, m.Simulations)
	return m
}

// ObserveFetch records one endpoint attempt.
func (m *Metrics) ObserveFetch(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(endpoint, outcome).Inc()
	m.FetchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// CacheHit counts a cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss counts a cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// ObserveSimulation counts a finished simulation.
func (m *Metrics) ObserveSimulation(outcome string) {
	if m == nil {
		return
	}
	m.Simulations.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
