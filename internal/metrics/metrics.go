// Package metrics records operational metrics for table loads behind a small,
// backend-agnostic interface.
//
// A process-wide backend defaults to a no-op implementation, so the Record*
// helpers are always safe to call. Concrete systems live in subpackages
// (prompush for a Prometheus Pushgateway, datadog for DogStatsD) and are
// installed with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the Record* helpers.
const (
	StepTotal    = "csvload_step_total"
	StepDuration = "csvload_step_duration_seconds"
	RowsTotal    = "csvload_rows_total"
	BatchesTotal = "csvload_batches_total"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
	labelTable    = "table"
	labelStep     = "step"
	labelStatus   = "status"
	labelKind     = "kind"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends. Implementations must
// be safe for concurrent use.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration-style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs b and returns the previous backend. Passing nil
// restores the no-op backend.
func SetBackend(b Backend) Backend {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	defer mu.Unlock()
	prev := backend
	backend = b
	return prev
}

// Flush delegates to the current backend.
func Flush() error { return current().Flush() }

// RecordStep counts one execution of step for table and records its
// duration, labelled success or failure by err.
func RecordStep(table, step string, err error, d time.Duration) {
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}
	lbls := Labels{labelTable: table, labelStep: step, labelStatus: status}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds delta to the row counter of the given kind
// ("read", "inserted", "skipped", "duplicates"). Non-positive deltas are
// ignored.
func RecordRows(table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{labelTable: table, labelKind: kind})
}

// RecordBatches adds delta to the flushed-batch counter.
func RecordBatches(table string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{labelTable: table})
}
