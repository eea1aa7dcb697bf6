package signal

import (
	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
)

// ValueSignal carries presence and a value folded from every emission of
// the instant.
type ValueSignal[V any] struct {
	presence

	combine func(V, V) V
	clone   func(V) V
	// single limits the signal to one parked awaiter (uniq signals).
	single bool

	accum    V
	hasAccum bool
	awaiters []arrow.Continuation[V]
}

// ValueOption configures a valued signal.
type ValueOption[V any] func(*ValueSignal[V])

// WithClone sets the function used to copy the combined value for each
// awaiter.
//
// Default: arrow.Clone, which uses the value's Clone method when it has one
// and plain assignment otherwise.
func WithClone[V any](clone func(V) V) ValueOption[V] {
	return func(s *ValueSignal[V]) {
		s.clone = clone
	}
}

// NewValue creates an absent valued signal whose emissions are folded with
// combine.
func NewValue[V any](combine func(V, V) V, opts ...ValueOption[V]) *ValueSignal[V] {
	s := &ValueSignal[V]{
		combine: combine,
		clone:   arrow.Clone[V],
	}
	for _, opt := range opts {
		opt(s)
	}
	s.presence.endOfInstant = s.reset
	return s
}

// Emit returns an arrow that folds its input into the instant's value,
// makes s present, and continues on the current instant.
func (s *ValueSignal[V]) Emit() arrow.Arrow[V, arrow.Unit] {
	return arrow.Func[V, arrow.Unit](func(rt runtime.Runtime, v V, k arrow.Continuation[arrow.Unit]) {
		s.mu.Lock()
		if s.hasAccum {
			s.accum = s.combine(s.accum, v)
		} else {
			s.accum = v
			s.hasAccum = true
		}
		ready, hook := s.emitLocked()
		s.mu.Unlock()

		s.schedule(rt, ready, hook)
		rt.OnCurrentInstant(func(rt runtime.Runtime) {
			k(rt, arrow.Unit{})
		})
	})
}

// Await returns an arrow that yields the value of the next instant in which
// s is emitted, delivered at the start of the instant after it. An await
// registered in an instant that already saw emissions gets that instant's
// value.
func (s *ValueSignal[V]) Await() arrow.Arrow[arrow.Unit, V] {
	return arrow.Func[arrow.Unit, V](func(rt runtime.Runtime, _ arrow.Unit, k arrow.Continuation[V]) {
		s.mu.Lock()
		if s.single && len(s.awaiters) > 0 {
			s.mu.Unlock()
			runtime.FatalAt(rt.Now(), runtime.ErrCodeUniqAwaiterBusy, "uniq signal awaited twice before delivery")
		}
		s.awaiters = append(s.awaiters, k)
		s.mu.Unlock()
	})
}

func (s *ValueSignal[V]) reset(rt runtime.Runtime) {
	s.mu.Lock()
	absent := s.resetLocked()

	var (
		value    V
		awaiters []arrow.Continuation[V]
	)
	deliver := s.hasAccum
	if deliver {
		value = s.accum
		var zero V
		s.accum = zero
		s.hasAccum = false
		awaiters = s.awaiters
		s.awaiters = nil
	}
	s.mu.Unlock()

	scheduleNext(rt, absent)
	for _, k := range awaiters {
		v := s.clone(value)
		rt.OnNextInstant(func(rt runtime.Runtime) {
			k(rt, v)
		})
	}
}
