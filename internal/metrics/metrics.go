// Package metrics records batch statistics and exports them in the
// Prometheus text format for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	FilesProcessed        *prometheus.CounterVec
	SegmentsPlanned       prometheus.Counter
	SegmentOutcomes       *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
	Refinements           *prometheus.CounterVec
	CleanupFailures       prometheus.Counter
	BatchDuration         prometheus.Histogram
	LastBatchTimestamp    prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FilesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chunkscribe_files_total",
			Help: "Source files processed, by final status",
		}, []string{"status"}),
		SegmentsPlanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "chunkscribe_segments_planned_total",
			Help: "Transcription units planned across all files",
		}),
		SegmentOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chunkscribe_segments_total",
			Help: "Transcription units by outcome",
		}, []string{"outcome"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chunkscribe_transcription_duration_seconds",
			Help:    "Time spent waiting on the transcription service per unit",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		Refinements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chunkscribe_refinements_total",
			Help: "Text refinement calls by outcome",
		}, []string{"outcome"}),
		CleanupFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chunkscribe_cleanup_failures_total",
			Help: "Scratch paths that could not be removed",
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chunkscribe_batch_duration_seconds",
			Help:    "Wall time of a whole batch",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		}),
		LastBatchTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chunkscribe_last_batch_timestamp_seconds",
			Help: "Unix time the last batch finished",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBatch records the end of a batch.
func (m *Metrics) ObserveBatch(elapsed time.Duration, finished time.Time) {
	m.BatchDuration.Observe(elapsed.Seconds())
	m.LastBatchTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
