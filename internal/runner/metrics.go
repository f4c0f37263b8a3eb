package runner

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry             *prometheus.Registry
	runsTotal            *prometheus.CounterVec
	runDuration          *prometheus.HistogramVec
	variantsTotal        *prometheus.CounterVec
	bytesWrittenTotal    prometheus.Counter
	pixelsProcessedTotal prometheus.Counter
	bytesSavedTotal      prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()

	m := &metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelopt_runs_total",
			Help: "Optimization runs by final status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pixelopt_run_duration_seconds",
			Help:    "Wall time of each optimization run, decode included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		variantsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelopt_variants_written_total",
			Help: "Variants written, by output format.",
		}, []string{"format"}),
		bytesWrittenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelopt_bytes_written_total",
			Help: "Bytes written across all variants.",
		}),
		pixelsProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelopt_pixels_processed_total",
			Help: "Output pixels produced across all variants.",
		}),
		bytesSavedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelopt_bytes_saved_total",
			Help: "Source bytes minus bytes written, floored at zero.",
		}),
	}

	registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.variantsTotal,
		m.bytesWrittenTotal,
		m.pixelsProcessedTotal,
		m.bytesSavedTotal,
	)
	return m
}

// writeTextfile dumps the registry in the node_exporter textfile format.
func (m *metrics) writeTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
