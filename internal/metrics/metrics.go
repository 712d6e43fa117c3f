// Package metrics exposes benchmark measurements as Prometheus metrics.
//
// quadbench is a batch tool, so nothing is scraped: the registry is
// written once in text exposition format at the end of a run, ready for
// node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/quadbench/internal/harness"
)

const namespace = "quadbench"

// Recorder collects batch measurements on a private registry.
// It implements harness.Observer.
type Recorder struct {
	registry *prometheus.Registry

	// callSeconds is the mean time of one integration in each batch.
	// Labels: form, method
	callSeconds *prometheus.HistogramVec

	// elapsedSeconds is the wall-clock time of the latest batch.
	// Labels: form
	elapsedSeconds *prometheus.GaugeVec

	// estimate is the latest integral estimate.
	// Labels: form
	estimate *prometheus.GaugeVec

	batches      *prometheus.CounterVec
	integrations *prometheus.CounterVec
	evaluations  *prometheus.CounterVec
}

// NewRecorder returns a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		callSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "integration",
			Name:      "call_seconds",
			Help:      "Mean wall-clock time of one integration per batch",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 2, 20),
		}, []string{"form", "method"}),
		elapsedSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "elapsed_seconds",
			Help:      "Wall-clock time of the latest batch",
		}, []string{"form"}),
		estimate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "integration",
			Name:      "estimate",
			Help:      "Latest integral estimate",
		}, []string{"form"}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "total",
			Help:      "Timed batches by form",
		}, []string{"form"}),
		integrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "integration",
			Name:      "total",
			Help:      "Integrations performed by form",
		}, []string{"form"}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "integrand",
			Name:      "evaluations_total",
			Help:      "Integrand evaluations by form",
		}, []string{"form"}),
	}
}

// ObserveBatch implements harness.Observer. Every repetition of a batch
// performs the same evaluations, so the last result stands for all of them.
func (r *Recorder) ObserveBatch(m *harness.Measurement) {
	form := string(m.Form)

	r.callSeconds.WithLabelValues(form, m.Method).Observe(m.PerCall().Seconds())
	r.elapsedSeconds.WithLabelValues(form).Set(m.Elapsed.Seconds())
	r.estimate.WithLabelValues(form).Set(m.Result.Estimate)
	r.batches.WithLabelValues(form).Inc()
	r.integrations.WithLabelValues(form).Add(float64(m.Repetitions))
	r.evaluations.WithLabelValues(form).Add(float64(m.Repetitions * m.Result.Evaluations))
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path in text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
