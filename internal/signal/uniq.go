package signal

import (
	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
)

// UniqEmitter is the producing side of a uniq signal. It implements Signal.
type UniqEmitter[V any] struct {
	s *ValueSignal[V]
}

// UniqAwaiter is the consuming side of a uniq signal. At most one Await may
// be parked at a time.
type UniqAwaiter[V any] struct {
	s *ValueSignal[V]
}

// NewUniq creates a valued signal with a single consumer and returns its
// two ends.
func NewUniq[V any](combine func(V, V) V, opts ...ValueOption[V]) (*UniqEmitter[V], *UniqAwaiter[V]) {
	s := NewValue(combine, opts...)
	s.single = true
	return &UniqEmitter[V]{s: s}, &UniqAwaiter[V]{s: s}
}

// Emit returns an arrow that folds its input into the instant's value.
func (e *UniqEmitter[V]) Emit() arrow.Arrow[V, arrow.Unit] {
	return e.s.Emit()
}

// WhenPresent implements Signal.
func (e *UniqEmitter[V]) WhenPresent(rt runtime.Runtime, k runtime.Continuation) {
	e.s.WhenPresent(rt, k)
}

// Decide implements Signal.
func (e *UniqEmitter[V]) Decide(rt runtime.Runtime, ifPresent, ifAbsent runtime.Continuation) {
	e.s.Decide(rt, ifPresent, ifAbsent)
}

// Await returns an arrow that yields the next combined value. A second
// Await parked before the first is delivered is fatal.
func (a *UniqAwaiter[V]) Await() arrow.Arrow[arrow.Unit, V] {
	return a.s.Await()
}
