package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	histograms []histCall
	flushCount int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

// install swaps the global backend for the duration of a test.
func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := current()
	fb := &fakeBackend{}
	SetBackend(fb)
	t.Cleanup(func() { SetBackend(orig) })
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordStep("jobA", "parse", nil, 2*time.Second)
	RecordStep("jobB", "load", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2, 2", len(fb.counters), len(fb.histograms))
	}

	c0 := fb.counters[0]
	if c0.name != StepTotal || c0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want name=%s, delta=1", c0, StepTotal)
	}
	if c0.labels["job"] != "jobA" || c0.labels["step"] != "parse" || c0.labels["status"] != "success" {
		t.Fatalf("counter[0].labels = %v", c0.labels)
	}
	if h0 := fb.histograms[0]; h0.name != StepDurationSeconds || h0.value < 1.999 || h0.value > 2.001 {
		t.Fatalf("hist[0] = %#v; want %s ~2.0", h0, StepDurationSeconds)
	}

	if got := fb.counters[1].labels["status"]; got != "failure" {
		t.Fatalf("counter[1].labels[status] = %q; want failure", got)
	}
	if h1 := fb.histograms[1]; h1.value < 1.499 || h1.value > 1.501 {
		t.Fatalf("hist[1].value = %v; want ~1.5", h1.value)
	}
}

func TestRecordRowAndBatches(t *testing.T) {
	fb := install(t)

	RecordRow("jobX", "parsed", 3)
	RecordRow("jobX", "parsed", 0) // ignored
	RecordRow("jobY", "inserted", 5)
	RecordBatches("jobZ", 2)
	RecordBatches("jobZ", 0) // ignored

	if len(fb.counters) != 3 {
		t.Fatalf("expected 3 counter calls, got %d", len(fb.counters))
	}
	if c := fb.counters[0]; c.name != RowsTotal || c.delta != 3 || c.labels["kind"] != "parsed" {
		t.Fatalf("counter[0] = %#v", c)
	}
	if c := fb.counters[1]; c.labels["job"] != "jobY" || c.labels["kind"] != "inserted" {
		t.Fatalf("counter[1] = %#v", c)
	}
	if c := fb.counters[2]; c.name != BatchesTotal || c.delta != 2 || c.labels["job"] != "jobZ" {
		t.Fatalf("counter[2] = %#v", c)
	}
}

func TestRecordColumns(t *testing.T) {
	fb := install(t)

	RecordColumns("j", map[string]int{"integer": 2, "string": 0})
	if len(fb.counters) != 1 {
		t.Fatalf("expected 1 counter call, got %d", len(fb.counters))
	}
	if c := fb.counters[0]; c.name != ColumnsTotal || c.delta != 2 || c.labels["type"] != "integer" {
		t.Fatalf("counter[0] = %#v", c)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	fb := install(t)

	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	SetBackend(nil)
	if current() != Backend(fb) {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}
