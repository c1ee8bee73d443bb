// Package metrics records per-run operational metrics for the reporting
// pipeline and writes them in the Prometheus text exposition format, so a
// node_exporter textfile collector (or a human) can pick them up after a
// batch run.
//
// Every run owns its own registry; nothing is global.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Step outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Row kinds.
const (
	RowsLoaded      = "loaded"
	RowsNullDates   = "null_dates"
	RowsNullRevenue = "null_revenue"
)

// Recorder holds the collectors of one run.
type Recorder struct {
	reg *prometheus.Registry

	stepCounter  *prometheus.CounterVec   // reporter_step_total
	stepDuration *prometheus.HistogramVec // reporter_step_duration_seconds
	rowCounter   *prometheus.CounterVec   // reporter_rows_total
	warnings     prometheus.Counter       // reporter_warnings_total
}

// NewRecorder builds a Recorder with a fresh registry.
func NewRecorder() (*Recorder, error) {
	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reporter_step_total",
			Help: "Pipeline step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reporter_step_duration_seconds",
			Help:    "Duration of pipeline steps in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"step"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reporter_rows_total",
			Help: "Row counts per kind (loaded, null_dates, null_revenue).",
		},
		[]string{"kind"},
	)
	warnings := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reporter_warnings_total",
			Help: "Data-quality warnings raised by validation.",
		},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter":  stepCounter,
		"step duration": stepDuration,
		"row counter":   rowCounter,
		"warnings":      warnings,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", name, err)
		}
	}

	return &Recorder{
		reg:          reg,
		stepCounter:  stepCounter,
		stepDuration: stepDuration,
		rowCounter:   rowCounter,
		warnings:     warnings,
	}, nil
}

// Registry exposes the run's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// RecordStep counts one step execution and observes its duration.
func (r *Recorder) RecordStep(step string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	r.stepCounter.WithLabelValues(step, status).Inc()
	r.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// Step runs fn and records it under step.
func (r *Recorder) Step(step string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.RecordStep(step, err, time.Since(start))
	return err
}

// RecordRows adds delta rows of the given kind. Non-positive deltas are
// ignored.
func (r *Recorder) RecordRows(kind string, delta int) {
	if delta <= 0 {
		return
	}
	r.rowCounter.WithLabelValues(kind).Add(float64(delta))
}

// RecordWarnings adds n data-quality warnings.
func (r *Recorder) RecordWarnings(n int) {
	if n <= 0 {
		return
	}
	r.warnings.Add(float64(n))
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
