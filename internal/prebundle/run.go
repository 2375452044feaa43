package prebundle

import (
	"sync"

	"github.com/mfreed420/vite-plugin-svelte/internal/stage"
)

// Record is the finished stage trace for one file. PackageKey stays empty
// until the aggregator's out-of-band package resolution fills it in.
type Record struct {
	Path       string
	Events     []stage.Event
	PackageKey string
}

// Run owns the records of a single prebundling pass. It is created by the
// run-start signal before any file of the pass is dispatched, so every record
// appended mid-run unambiguously belongs to it. The append is the only
// cross-file shared-state operation and is serialized by the mutex.
type Run struct {
	mu      sync.Mutex
	records []Record
	startTS float64
	clock   stage.Clock
}

// NewRun starts a run on the process monotonic clock.
func NewRun() *Run {
	return NewRunWithClock(stage.Now)
}

// NewRunWithClock starts a run reading timestamps from clock.
func NewRunWithClock(clock stage.Clock) *Run {
	return &Run{startTS: clock(), clock: clock}
}

// append stores a completed record. Safe under concurrent file completion;
// each record arrives whole, never interleaved.
func (r *Run) append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
}

// Records returns a snapshot of the records appended so far.
func (r *Run) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.records))
	copy(out, r.records)

	return out
}

// StartTimestamp reports the monotonic timestamp taken at run start.
func (r *Run) StartTimestamp() float64 {
	return r.startTS
}

// Elapsed reports the wall duration of the run so far, in milliseconds.
func (r *Run) Elapsed() float64 {
	return r.clock() - r.startTS
}
