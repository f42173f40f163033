// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from an import run.
//
// The package is minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems live in subpackages (prompush, datadog) so the
//     rest of the code depends only on this package.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the importer.
const (
	StepTotal           = "csvsql_step_total"
	StepDurationSeconds = "csvsql_step_duration_seconds"
	RowsTotal           = "csvsql_rows_total"
	BatchesTotal        = "csvsql_batches_total"
	ColumnsTotal        = "csvsql_columns_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one run step
// (fetch, parse, infer, build, ddl, load, procedure).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments a row-level counter for the given job and kind.
//
// Kinds used by the importer:
//   - "parsed": records produced by the tokenizer
//   - "blank": blank lines skipped
//   - "inserted": rows reported by the database
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the bulk-copy batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}

// RecordColumns counts inferred columns per type name.
func RecordColumns(job string, byType map[string]int) {
	b := current()
	for typ, n := range byType {
		if n <= 0 {
			continue
		}
		b.IncCounter(ColumnsTotal, float64(n), Labels{
			"job":  job,
			"type": typ,
		})
	}
}
