package arrow

import (
	"sync"

	"github.com/roach88/reactor/internal/runtime"
)

// ErrNoResult is returned when a program drains without producing a value,
// for example a valued await that no emitter ever satisfied.
var ErrNoResult = runtime.NewInvariantError(runtime.ErrCodeNoResult, "program completed without producing a value")

// Outcome collects the value produced by a launched program.
type Outcome[B any] struct {
	mu    sync.Mutex
	value B
	done  bool
	at    int64
}

// Launch schedules x(a) on the current instant of rt and returns a handle to
// its eventual result. The caller drives rt.
func Launch[A, B any](rt runtime.Runtime, x Arrow[A, B], a A) *Outcome[B] {
	out := &Outcome[B]{}
	rt.OnCurrentInstant(func(rt runtime.Runtime) {
		x.Call(rt, a, out.deliver)
	})
	return out
}

func (o *Outcome[B]) deliver(rt runtime.Runtime, b B) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = b
	o.done = true
	o.at = rt.Now()
}

// Done reports whether the program has produced its value.
func (o *Outcome[B]) Done() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

// Instant returns the instant in which the value was produced, or 0.
func (o *Outcome[B]) Instant() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.at
}

// Result returns the produced value, or ErrNoResult.
func (o *Outcome[B]) Result() (B, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.done {
		var zero B
		return zero, ErrNoResult
	}
	return o.value, nil
}

// ExecuteWith runs x(a) on rt until the runtime drains.
func ExecuteWith[A, B any](rt runtime.Runtime, x Arrow[A, B], a A) (B, error) {
	out := Launch(rt, x, a)
	rt.Execute()
	return out.Result()
}

// ExecuteSeq runs x(a) on a fresh sequential runtime until it drains.
// A program that produces no value is fatal.
func ExecuteSeq[A, B any](x Arrow[A, B], a A, opts ...runtime.Option) B {
	return mustResult(ExecuteWith(runtime.NewSequential(opts...), x, a))
}

// ExecutePar runs x(a) on a fresh parallel runtime with n workers until it
// drains. A program that produces no value is fatal.
func ExecutePar[A, B any](x Arrow[A, B], n int, a A, opts ...runtime.Option) B {
	return mustResult(ExecuteWith(runtime.NewParallel(n, opts...), x, a))
}

func mustResult[B any](b B, err error) B {
	if err != nil {
		panic(err)
	}
	return b
}
