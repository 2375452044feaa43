// Package observability exposes prometheus instruments for a prebundling
// pass: file outcome counters and per-stage duration histograms.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "svelte_prebundle"

// msPerSecond converts recorded millisecond durations to histogram seconds.
const msPerSecond = 1000.0

// Metrics holds the prometheus instruments registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	filesCompiled prometheus.Counter
	filesFailed   prometheus.Counter
	stageSeconds  *prometheus.HistogramVec
}

// NewMetrics creates and registers all instruments on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		filesCompiled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_compiled_total",
			Help:      "Files successfully compiled during prebundling.",
		}),
		filesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Files that failed a pipeline stage during prebundling.",
		}),
		stageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Per-file duration of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	registry.MustRegister(m.filesCompiled, m.filesFailed, m.stageSeconds)

	return m
}

// FileCompiled counts one successfully compiled file.
func (m *Metrics) FileCompiled() {
	m.filesCompiled.Inc()
}

// FileFailed counts one failed file.
func (m *Metrics) FileFailed() {
	m.filesFailed.Inc()
}

// ObserveStage records a stage duration given in milliseconds.
func (m *Metrics) ObserveStage(stage string, ms float64) {
	m.stageSeconds.WithLabelValues(stage).Observe(ms / msPerSecond)
}

// Handler returns the pull endpoint for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gather exposes the registry contents, used by tests.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}
