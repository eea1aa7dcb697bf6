package arrow

import (
	"sync"

	"github.com/roach88/reactor/internal/runtime"
)

type product[A, B, C, D any] struct {
	first  Arrow[A, C]
	second Arrow[B, D]
}

// Product runs x on the first component and y on the second as two
// independent current-instant tasks, and yields both results once both
// have arrived. The two sides may finish in any order and in different
// instants.
func Product[A, B, C, D any](x Arrow[A, C], y Arrow[B, D]) Arrow[Pair[A, B], Pair[C, D]] {
	return product[A, B, C, D]{first: x, second: y}
}

func (p product[A, B, C, D]) Call(rt runtime.Runtime, in Pair[A, B], k Continuation[Pair[C, D]]) {
	j := &join[C, D]{k: k}
	first, second := p.first, p.second

	rt.OnCurrentInstant(func(rt runtime.Runtime) {
		first.Call(rt, in.First, j.arriveFirst)
	})
	rt.OnCurrentInstant(func(rt runtime.Runtime) {
		second.Call(rt, in.Second, j.arriveSecond)
	})
}

type seqProduct[A, B, C, D any] struct {
	first  Arrow[A, C]
	second Arrow[B, D]
}

// SeqProduct computes the same result as Product but runs x to completion
// before starting y. Use it only where the two sides need no fairness.
func SeqProduct[A, B, C, D any](x Arrow[A, C], y Arrow[B, D]) Arrow[Pair[A, B], Pair[C, D]] {
	return seqProduct[A, B, C, D]{first: x, second: y}
}

func (p seqProduct[A, B, C, D]) Call(rt runtime.Runtime, in Pair[A, B], k Continuation[Pair[C, D]]) {
	second := p.second
	p.first.Call(rt, in.First, func(rt runtime.Runtime, c C) {
		second.Call(rt, in.Second, func(rt runtime.Runtime, d D) {
			k(rt, Pair[C, D]{First: c, Second: d})
		})
	})
}

// joinState tracks a product join point.
//
// Transitions: joinEmpty -> joinHasFirst|joinHasSecond -> joinFired.
// joinFired is absorbing.
type joinState int

const (
	joinEmpty joinState = iota
	joinHasFirst
	joinHasSecond
	joinFired
)

// join collects the two results of one Product invocation.
type join[C, D any] struct {
	mu     sync.Mutex
	state  joinState
	first  C
	second D
	k      Continuation[Pair[C, D]]
}

func (j *join[C, D]) arriveFirst(rt runtime.Runtime, c C) {
	j.mu.Lock()
	switch j.state {
	case joinEmpty:
		j.first = c
		j.state = joinHasFirst
		j.mu.Unlock()
	case joinHasSecond:
		j.fire(rt, c, j.second)
	default:
		j.mu.Unlock()
		runtime.FatalAt(rt.Now(), runtime.ErrCodeJoinDoubleArrival, "product join received its first value twice")
	}
}

func (j *join[C, D]) arriveSecond(rt runtime.Runtime, d D) {
	j.mu.Lock()
	switch j.state {
	case joinEmpty:
		j.second = d
		j.state = joinHasSecond
		j.mu.Unlock()
	case joinHasFirst:
		j.fire(rt, j.first, d)
	default:
		j.mu.Unlock()
		runtime.FatalAt(rt.Now(), runtime.ErrCodeJoinDoubleArrival, "product join received its second value twice")
	}
}

// fire completes the join. Must be called with mu held; releases it before
// invoking the continuation.
func (j *join[C, D]) fire(rt runtime.Runtime, c C, d D) {
	j.state = joinFired
	k := j.k
	j.k = nil
	var zeroC C
	var zeroD D
	j.first, j.second = zeroC, zeroD
	j.mu.Unlock()

	k(rt, Pair[C, D]{First: c, Second: d})
}
