package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics collects per-run counters on a private registry.
type Metrics struct {
	registry             *prometheus.Registry
	transformsTotal      *prometheus.CounterVec
	transformDuration    *prometheus.HistogramVec
	pixelsProcessedTotal prometheus.Counter
	outputBytesTotal     prometheus.Counter
}

// NewMetrics registers the ggpicture collectors and the Go runtime collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		transformsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ggpicture_transforms_total",
			Help: "Transforms applied, by operation and outcome.",
		}, []string{"op", "outcome"}),
		transformDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ggpicture_transform_duration_seconds",
			Help:    "Wall time of a single transform, excluding decode and encode.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"op"}),
		pixelsProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ggpicture_pixels_processed_total",
			Help: "Source pixels fed through successful transforms.",
		}),
		outputBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ggpicture_output_bytes_total",
			Help: "Encoded bytes written.",
		}),
	}

	registry.MustRegister(
		m.transformsTotal,
		m.transformDuration,
		m.pixelsProcessedTotal,
		m.outputBytesTotal,
	)
	return m
}

// ObserveTransform records one transform. pixels is only counted on success.
func (m *Metrics) ObserveTransform(op string, d time.Duration, pixels int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.transformsTotal.WithLabelValues(op, outcome).Inc()
	m.transformDuration.WithLabelValues(op).Observe(d.Seconds())
	if err == nil {
		m.pixelsProcessedTotal.Add(float64(pixels))
	}
}

// ObserveOutput records encoded bytes written.
func (m *Metrics) ObserveOutput(n int) {
	if m == nil {
		return
	}
	m.outputBytesTotal.Add(float64(n))
}

// WriteTextfile dumps all metrics in the text exposition format, suitable
// for the node-exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
