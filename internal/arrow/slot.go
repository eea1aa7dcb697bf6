package arrow

import (
	"sync"

	"github.com/roach88/reactor/internal/runtime"
)

// Slot holds a one-shot continuation that more than one path may try to
// fire. The first Take wins; any later Take is an invariant violation.
type Slot[V any] struct {
	mu sync.Mutex
	k  Continuation[V]
}

// NewSlot stores k in a fresh slot.
func NewSlot[V any](k Continuation[V]) *Slot[V] {
	return &Slot[V]{k: k}
}

// Take removes and returns the continuation.
func (s *Slot[V]) Take() Continuation[V] {
	s.mu.Lock()
	k := s.k
	s.k = nil
	s.mu.Unlock()

	if k == nil {
		runtime.Fatal(runtime.ErrCodeSpentContinuation, "one-shot continuation taken twice")
	}
	return k
}

// Fire takes the continuation and invokes it with v.
func (s *Slot[V]) Fire(rt runtime.Runtime, v V) {
	s.Take()(rt, v)
}
