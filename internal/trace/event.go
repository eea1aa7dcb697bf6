package trace

import (
	"cmp"
	"slices"
	"sync"
)

// Event is one observation made by a program.
type Event struct {
	Instant int64  `json:"instant" yaml:"instant"`
	Label   string `json:"label" yaml:"label"`
	Value   int64  `json:"value" yaml:"value"`
}

// Compare orders events by instant, then label, then value.
func Compare(a, b Event) int {
	if c := cmp.Compare(a.Instant, b.Instant); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Label, b.Label); c != 0 {
		return c
	}
	return cmp.Compare(a.Value, b.Value)
}

// Sort orders events in place with Compare.
func Sort(events []Event) {
	slices.SortStableFunc(events, Compare)
}

// Recorder collects events. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends an event.
func (r *Recorder) Record(instant int64, label string, value int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Instant: instant, Label: label, Value: value})
}

// Events returns the events in recording order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Snapshot returns the events in canonical order.
func (r *Recorder) Snapshot() []Event {
	events := r.Events()
	Sort(events)
	return events
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Equal reports whether two event lists hold the same events, ignoring
// their order within an instant.
func Equal(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	Sort(x)
	Sort(y)
	return slices.Equal(x, y)
}
