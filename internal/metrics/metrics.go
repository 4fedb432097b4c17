// Package metrics exposes Prometheus collectors for species resolution and
// reaction evaluation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/thermo/internal/models"
)

const namespace = "thermo"

// Metrics holds the collectors on a private registry. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	resolutions     *prometheus.CounterVec
	remoteRequests  *prometheus.CounterVec
	remoteDuration  *prometheus.HistogramVec
	evaluations     *prometheus.CounterVec
	evalDuration    prometheus.Histogram
	fallbackEntries prometheus.Gauge
	fallbackReloads prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Species property fields resolved, by field and tier",
			},
			[]string{"field", "tier"},
		),
		remoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_requests_total",
				Help:      "Remote data source lookups, by outcome",
			},
			[]string{"outcome"},
		),
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_request_duration_seconds",
				Help:      "Duration of remote lookups in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Reaction evaluations, by outcome",
			},
			[]string{"outcome"},
		),
		evalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "End-to-end evaluation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		fallbackEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "fallback_entries",
				Help:      "Species in the active fallback table",
			},
		),
		fallbackReloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallback_reloads_total",
				Help:      "Successful fallback table reloads",
			},
		),
	}
	registry.MustRegister(
		m.resolutions,
		m.remoteRequests,
		m.remoteDuration,
		m.evaluations,
		m.evalDuration,
		m.fallbackEntries,
		m.fallbackReloads,
	)
	return m
}

// FieldResolved implements resolver.Observer.
func (m *Metrics) FieldResolved(field models.Field, tier models.Tier) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(string(field), string(tier)).Inc()
}

// RemoteFetch implements resolver.Observer.
func (m *Metrics) RemoteFetch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.remoteRequests.WithLabelValues(outcome).Inc()
	m.remoteDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// EvaluationDone implements thermoservice.Recorder.
func (m *Metrics) EvaluationDone(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(outcome).Inc()
	m.evalDuration.Observe(elapsed.Seconds())
}

// FallbackLoaded records the size of a newly active fallback table.
func (m *Metrics) FallbackLoaded(entries int, reload bool) {
	if m == nil {
		return
	}
	m.fallbackEntries.Set(float64(entries))
	if reload {
		m.fallbackReloads.Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
