package arrow

import "github.com/roach88/reactor/internal/runtime"

type identity[A any] struct{}

// Identity passes its input through unchanged.
func Identity[A any]() Arrow[A, A] {
	return identity[A]{}
}

func (identity[A]) Call(rt runtime.Runtime, a A, k Continuation[A]) {
	k(rt, a)
}

type constant[A, B any] struct {
	value B
}

// Value ignores its input and yields a clone of v.
func Value[A, B any](v B) Arrow[A, B] {
	return constant[A, B]{value: v}
}

func (c constant[A, B]) Call(rt runtime.Runtime, _ A, k Continuation[B]) {
	k(rt, Clone(c.value))
}

type mapping[A, B any] struct {
	f func(A) B
}

// Map yields f(input) synchronously.
func Map[A, B any](f func(A) B) Arrow[A, B] {
	return mapping[A, B]{f: f}
}

func (m mapping[A, B]) Call(rt runtime.Runtime, a A, k Continuation[B]) {
	k(rt, m.f(a))
}

type pause[A any] struct{}

// Pause delivers its input unchanged at the next instant. It is the only
// elementary arrow that consumes logical time.
func Pause[A any]() Arrow[A, A] {
	return pause[A]{}
}

func (pause[A]) Call(rt runtime.Runtime, a A, k Continuation[A]) {
	rt.OnNextInstant(func(rt runtime.Runtime) {
		k(rt, a)
	})
}

type pauseFor[A any] struct {
	n int64
}

// PauseFor delivers its input unchanged n instants later, as n chained
// Pauses would, from a single node. PauseFor(0) behaves as Identity.
func PauseFor[A any](n int64) Arrow[A, A] {
	return pauseFor[A]{n: n}
}

func (p pauseFor[A]) Call(rt runtime.Runtime, a A, k Continuation[A]) {
	if p.n <= 0 {
		k(rt, a)
		return
	}
	waitInstants(rt, a, p.n, k)
}

func waitInstants[A any](rt runtime.Runtime, a A, remaining int64, k Continuation[A]) {
	rt.OnNextInstant(func(rt runtime.Runtime) {
		if remaining == 1 {
			k(rt, a)
			return
		}
		waitInstants(rt, a, remaining-1, k)
	})
}

type bind[A, B, C any] struct {
	first  Arrow[A, B]
	second Arrow[B, C]
}

// Bind runs x, then feeds its output to y.
func Bind[A, B, C any](x Arrow[A, B], y Arrow[B, C]) Arrow[A, C] {
	return bind[A, B, C]{first: x, second: y}
}

func (b bind[A, B, C]) Call(rt runtime.Runtime, a A, k Continuation[C]) {
	second := b.second
	b.first.Call(rt, a, func(rt runtime.Runtime, v B) {
		second.Call(rt, v, k)
	})
}

// Chain binds same-typed arrows left to right. An empty chain is Identity.
func Chain[A any](xs ...Arrow[A, A]) Arrow[A, A] {
	if len(xs) == 0 {
		return Identity[A]()
	}
	out := xs[len(xs)-1]
	for i := len(xs) - 2; i >= 0; i-- {
		out = Bind(xs[i], out)
	}
	return out
}

type flatten[A, B any] struct {
	inner Arrow[A, Arrow[Unit, B]]
}

// Flatten runs x, which yields another arrow, and immediately invokes that
// arrow with Unit.
func Flatten[A, B any](x Arrow[A, Arrow[Unit, B]]) Arrow[A, B] {
	return flatten[A, B]{inner: x}
}

func (f flatten[A, B]) Call(rt runtime.Runtime, a A, k Continuation[B]) {
	f.inner.Call(rt, a, func(rt runtime.Runtime, y Arrow[Unit, B]) {
		y.Call(rt, Unit{}, k)
	})
}

// If runs then on inputs satisfying pred and els on the others.
func If[A, B any](pred func(A) bool, then, els Arrow[A, B]) Arrow[A, B] {
	return Flatten(Map(func(a A) Arrow[Unit, B] {
		if pred(a) {
			return Bind(Value[Unit](a), then)
		}
		return Bind(Value[Unit](a), els)
	}))
}

type fixpoint[A, B any] struct {
	body Arrow[A, Either[A, B]]
}

// Fixpoint loops body until it yields Right. Left(a) feeds a back into body.
//
// Every iteration is re-dispatched through OnCurrentInstant, so the native
// stack stays flat however many iterations run; a loop whose body is
// synchronous still completes within the instant it started in.
func Fixpoint[A, B any](body Arrow[A, Either[A, B]]) Arrow[A, B] {
	return fixpoint[A, B]{body: body}
}

func (f fixpoint[A, B]) Call(rt runtime.Runtime, a A, k Continuation[B]) {
	f.body.Call(rt, a, func(rt runtime.Runtime, r Either[A, B]) {
		if b, ok := r.RightValue(); ok {
			k(rt, b)
			return
		}
		next, _ := r.LeftValue()
		rt.OnCurrentInstant(func(rt runtime.Runtime) {
			f.Call(rt, next, k)
		})
	})
}

type fork[A, B any] struct {
	branch Arrow[A, B]
}

// Fork spawns x on a clone of the input as an independent current-instant
// task and delivers the input to the continuation without waiting for x.
// Whatever x yields is dropped.
func Fork[A, B any](x Arrow[A, B]) Arrow[A, A] {
	return fork[A, B]{branch: x}
}

func (f fork[A, B]) Call(rt runtime.Runtime, a A, k Continuation[A]) {
	branch := f.branch
	v := Clone(a)
	rt.OnCurrentInstant(func(rt runtime.Runtime) {
		branch.Call(rt, v, discard[B])
	})
	k(rt, a)
}
