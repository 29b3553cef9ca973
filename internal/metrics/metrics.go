// Package metrics provides Prometheus metrics for the personalization pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ExtractionsTotal *prometheus.CounterVec
	SceneEditsTotal  *prometheus.CounterVec
	CollabDuration   *prometheus.HistogramVec
	TargetsByStatus  *prometheus.GaugeVec
	ErrorsTotal      *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ExtractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "personalizer_extractions_total",
				Help: "Total number of brand extraction runs by outcome.",
			},
			[]string{"outcome"},
		),
		SceneEditsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "personalizer_scene_edits_total",
				Help: "Total number of scene edit attempts by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		CollabDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "personalizer_collaborator_duration_seconds",
				Help:    "External collaborator call duration by service.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		TargetsByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "personalizer_targets",
				Help: "Number of personalization targets by status.",
			},
			[]string{"status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "personalizer_errors_total",
				Help: "Total errors by module and type.",
			},
			[]string{"module", "type"},
		),
		registry: reg,
	}

	reg.MustRegister(m.ExtractionsTotal)
	reg.MustRegister(m.SceneEditsTotal)
	reg.MustRegister(m.CollabDuration)
	reg.MustRegister(m.TargetsByStatus)
	reg.MustRegister(m.ErrorsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordExtraction increments the extraction counter.
func (m *Metrics) RecordExtraction(outcome string) {
	m.ExtractionsTotal.WithLabelValues(outcome).Inc()
}

// RecordSceneEdit increments the scene edit counter.
func (m *Metrics) RecordSceneEdit(operation, outcome string) {
	m.SceneEditsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveCollabDuration records a collaborator call duration.
func (m *Metrics) ObserveCollabDuration(service string, seconds float64) {
	m.CollabDuration.WithLabelValues(service).Observe(seconds)
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(module, errType string) {
	m.ErrorsTotal.WithLabelValues(module, errType).Inc()
}

// SetTargets sets the target count for a status.
func (m *Metrics) SetTargets(status string, count float64) {
	m.TargetsByStatus.WithLabelValues(status).Set(count)
}
