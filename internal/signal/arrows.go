package signal

import (
	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
)

// AwaitImmediate returns an arrow that delivers its input once s is present,
// in the instant of the emission.
func AwaitImmediate[A any](s Signal) arrow.Arrow[A, A] {
	return arrow.Func[A, A](func(rt runtime.Runtime, a A, k arrow.Continuation[A]) {
		s.WhenPresent(rt, func(rt runtime.Runtime) {
			k(rt, a)
		})
	})
}

// Present returns an arrow that runs then in the current instant if s is
// emitted during it, and els at the start of the next instant otherwise.
func Present[A, B any](s Signal, then, els arrow.Arrow[A, B]) arrow.Arrow[A, B] {
	return arrow.Func[A, B](func(rt runtime.Runtime, a A, k arrow.Continuation[B]) {
		slot := arrow.NewSlot(k)
		s.Decide(rt,
			func(rt runtime.Runtime) { then.Call(rt, a, slot.Take()) },
			func(rt runtime.Runtime) { els.Call(rt, a, slot.Take()) },
		)
	})
}
