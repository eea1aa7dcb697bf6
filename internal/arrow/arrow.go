package arrow

import "github.com/roach88/reactor/internal/runtime"

// Continuation receives the output of an arrow.
type Continuation[V any] func(rt runtime.Runtime, v V)

// Arrow is a reactive program node from A to B.
type Arrow[A, B any] interface {
	// Call drives a through the node and eventually invokes k with the
	// result, exactly once, unless the program blocks forever.
	Call(rt runtime.Runtime, a A, k Continuation[B])
}

// Func adapts an ordinary function to the Arrow interface.
type Func[A, B any] func(rt runtime.Runtime, a A, k Continuation[B])

// Call implements Arrow.
func (f Func[A, B]) Call(rt runtime.Runtime, a A, k Continuation[B]) {
	f(rt, a, k)
}

// discard is the continuation of forked branches.
func discard[V any](runtime.Runtime, V) {}
