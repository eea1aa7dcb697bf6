package testutil

import (
	"sort"
	"sync"

	"github.com/roach88/reactor/internal/runtime"
)

// Observation is one value seen by a Probe, stamped with the instant it was
// seen in.
type Observation[V any] struct {
	Instant int64
	Value   V
}

// Probe records observations made from inside reactive programs.
//
// Thread-safety: all methods are safe for concurrent use, so a probe can be
// shared by continuations running on parallel runtime workers.
type Probe[V any] struct {
	mu   sync.Mutex
	seen []Observation[V]
}

// NewProbe creates an empty probe.
func NewProbe[V any]() *Probe[V] {
	return &Probe[V]{}
}

// Observe records v at the instant rt is in.
func (p *Probe[V]) Observe(rt runtime.Runtime, v V) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, Observation[V]{Instant: rt.Now(), Value: v})
}

// Observations returns a copy of everything recorded, in recording order.
func (p *Probe[V]) Observations() []Observation[V] {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Observation[V], len(p.seen))
	copy(out, p.seen)
	return out
}

// Instants returns the instant of every observation, in recording order.
func (p *Probe[V]) Instants() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int64, len(p.seen))
	for i, o := range p.seen {
		out[i] = o.Instant
	}
	return out
}

// Values returns every observed value, in recording order.
func (p *Probe[V]) Values() []V {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]V, len(p.seen))
	for i, o := range p.seen {
		out[i] = o.Value
	}
	return out
}

// SortedInstants returns the observation instants in ascending order.
// Parallel runs record in nondeterministic order within an instant.
func (p *Probe[V]) SortedInstants() []int64 {
	out := p.Instants()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of observations.
func (p *Probe[V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}
