package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the export metrics and the registry they are served from.
type Metrics struct {
	registry *prometheus.Registry

	exports       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	documentBytes prometheus.Histogram
}

// NewMetrics registers the export metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formexport",
			Name:      "exports_total",
			Help:      "Export requests by result (ok, error, denied, not_modified).",
		}, []string{"result"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "formexport",
			Name:      "stage_duration_seconds",
			Help:      "Export stage duration by stage and outcome.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage", "outcome"}),
		documentBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "formexport",
			Name:      "document_bytes",
			Help:      "Size of served export documents.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

// ObserveStage records one stage run. It satisfies export.StageObserver.
func (m *Metrics) ObserveStage(stage string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.stageDuration.WithLabelValues(stage, outcome).Observe(elapsed.Seconds())
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) countExport(result string) {
	m.exports.WithLabelValues(result).Inc()
}
