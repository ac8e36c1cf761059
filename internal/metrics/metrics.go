package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetches        *prometheus.CounterVec
	recommendRuns  *prometheus.CounterVec
	warmupDuration prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Name:      "fetch_total",
			Help:      "Resilient fetches by fetcher and outcome.",
		}, []string{"fetcher", "outcome"}),
		recommendRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Name:      "recommendation_runs_total",
			Help:      "Recommendation rankings computed, by whether the forecast was degraded.",
		}, []string{"degraded"}),
		warmupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "planner",
			Name:      "image_warmup_seconds",
			Help:      "Duration of scheduled park image warm-up runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	reg.MustRegister(
		m.fetches,
		m.recommendRuns,
		m.warmupDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch implements resilience.Observer.
func (m *Metrics) ObserveFetch(fetcher, outcome string) {
	m.fetches.WithLabelValues(fetcher, outcome).Inc()
}

// ObserveRecommendation counts a ranking run.
func (m *Metrics) ObserveRecommendation(degraded bool) {
	label := "false"
	if degraded {
		label = "true"
	}
	m.recommendRuns.WithLabelValues(label).Inc()
}

// ObserveWarmup records how long an image warm-up took.
func (m *Metrics) ObserveWarmup(seconds float64) {
	m.warmupDuration.Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
