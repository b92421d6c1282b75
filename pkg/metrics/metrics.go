// Package metrics exposes sweep and API activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "icluster"

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// Sweep metrics
	Combinations        *prometheus.CounterVec
	CombinationDuration *prometheus.HistogramVec
	InteractionFailures *prometheus.CounterVec
	ActiveSweeps        prometheus.Gauge

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, so several can
// coexist in one process.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	combinations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "combinations_total",
			Help:      "Sweep combinations processed, by method and status",
		},
		[]string{"method", "status"},
	)

	combinationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "combination_duration_seconds",
			Help:      "Time to cluster, label and evaluate one combination",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	interactionFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "interaction_failures_total",
			Help:      "Interactions skipped because their input could not be loaded",
		},
		[]string{"interaction"},
	)

	activeSweeps := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_sweeps",
			Help:      "Sweeps currently running",
		},
	)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	registry.MustRegister(
		combinations,
		combinationDuration,
		interactionFailures,
		activeSweeps,
		httpRequests,
		httpDuration,
	)

	return &Collector{
		registry:            registry,
		Combinations:        combinations,
		CombinationDuration: combinationDuration,
		InteractionFailures: interactionFailures,
		ActiveSweeps:        activeSweeps,
		HTTPRequests:        httpRequests,
		HTTPDuration:        httpDuration,
	}
}

// ObserveCombination records one finished combination.
func (c *Collector) ObserveCombination(method string, ok bool, elapsed time.Duration) {
	if c == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	c.Combinations.WithLabelValues(method, status).Inc()
	c.CombinationDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// InteractionFailed records an interaction whose input could not be loaded.
func (c *Collector) InteractionFailed(interaction string) {
	if c == nil {
		return
	}
	c.InteractionFailures.WithLabelValues(interaction).Inc()
}

// SweepStarted increments the active sweep gauge and returns a func that
// decrements it.
func (c *Collector) SweepStarted() func() {
	if c == nil {
		return func() {}
	}
	c.ActiveSweeps.Inc()
	return c.ActiveSweeps.Dec
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
