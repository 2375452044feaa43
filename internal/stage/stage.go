// Package stage defines the per-file compile trace: a closed set of stage
// markers and an append-only event accumulator with named-pair duration lookup.
package stage

import "time"

// Marker identifies a named point in a file's transform pipeline.
type Marker string

// Stage markers emitted by the prebundle pipeline, in emission order.
// The preprocess markers are absent entirely when no preprocessor is
// configured; duration lookups must therefore resolve pairs by name,
// never by positional offset.
const (
	Start             Marker = "start"
	Read              Marker = "read"
	PreprocessedStart Marker = "preprocessedStart"
	Preprocessed      Marker = "preprocessed"
	CompileStart      Marker = "compileStart"
	Compiled          Marker = "compiled"
	End               Marker = "end"
)

// Event is one timestamped stage marker. Timestamp is monotonic milliseconds
// relative to process start, never wall clock.
type Event struct {
	Stage     Marker
	Timestamp float64
}

// Clock returns a monotonic timestamp in milliseconds. Injectable in tests.
type Clock func() float64

// processStart anchors all timestamps. time.Since uses the monotonic reading.
var processStart = time.Now()

// Now is the default Clock, reading the process monotonic clock.
func Now() float64 {
	return float64(time.Since(processStart)) / float64(time.Millisecond)
}

// pairStart maps each pair-ending marker to its implicit starting marker.
var pairStart = map[Marker]Marker{
	Read:         Start,
	Preprocessed: PreprocessedStart,
	Compiled:     CompileStart,
	End:          Start,
}

// Trace accumulates the ordered event list for a single file. It is a plain
// value owned by one pipeline invocation; nothing shares it until the
// finished record is appended to the run.
type Trace struct {
	events []Event
	clock  Clock
}

// NewTrace returns an empty trace using the process monotonic clock.
func NewTrace() *Trace {
	return &Trace{clock: Now}
}

// NewTraceWithClock returns an empty trace reading timestamps from clock.
func NewTraceWithClock(clock Clock) *Trace {
	return &Trace{clock: clock}
}

// FromEvents wraps an already recorded event sequence for duration lookups.
func FromEvents(events []Event) *Trace {
	return &Trace{events: events, clock: Now}
}

// Mark appends a timestamped event for marker.
func (t *Trace) Mark(marker Marker) {
	t.events = append(t.events, Event{Stage: marker, Timestamp: t.clock()})
}

// Events returns the recorded events in emission order.
func (t *Trace) Events() []Event {
	return t.events
}

// index returns the position of the first event recorded for marker.
func (t *Trace) index(marker Marker) (int, bool) {
	for i, ev := range t.events {
		if ev.Stage == marker {
			return i, true
		}
	}

	return 0, false
}

// Between returns timestamp(to) − timestamp(from). When from was never
// recorded it falls back to Since(to). The second return is false when to
// itself is absent.
func (t *Trace) Between(from, to Marker) (float64, bool) {
	toIdx, ok := t.index(to)
	if !ok {
		return 0, false
	}

	fromIdx, ok := t.index(from)
	if !ok {
		return t.sinceIndex(toIdx), true
	}

	return t.events[toIdx].Timestamp - t.events[fromIdx].Timestamp, true
}

// Since returns the time between to and the event recorded immediately
// before it. A trace's leading event has no predecessor and reports zero.
func (t *Trace) Since(to Marker) (float64, bool) {
	toIdx, ok := t.index(to)
	if !ok {
		return 0, false
	}

	return t.sinceIndex(toIdx), true
}

func (t *Trace) sinceIndex(toIdx int) float64 {
	if toIdx == 0 {
		return 0
	}

	return t.events[toIdx].Timestamp - t.events[toIdx-1].Timestamp
}

// Duration resolves the named pair ending at to, falling back to the
// time-since-previous-marker rule when the pair's start was never recorded.
func (t *Trace) Duration(to Marker) (float64, bool) {
	from, ok := pairStart[to]
	if !ok {
		return t.Since(to)
	}

	return t.Between(from, to)
}
