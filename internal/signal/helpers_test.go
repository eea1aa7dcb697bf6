package signal

import (
	"io"
	"log/slog"

	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
	"github.com/roach88/reactor/internal/testutil"
)

func quiet() runtime.Option {
	return runtime.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// mark records label on p and passes its input through.
func mark[A any](p *testutil.Probe[string], label string) arrow.Arrow[A, A] {
	return arrow.Func[A, A](func(rt runtime.Runtime, a A, k arrow.Continuation[A]) {
		p.Observe(rt, label)
		k(rt, a)
	})
}

// emitting returns an arrow that emits v on s.
func emitting[V any](s *ValueSignal[V], v V) arrow.Arrow[arrow.Unit, arrow.Unit] {
	return arrow.Bind(arrow.Value[arrow.Unit](v), s.Emit())
}

// readN awaits s n times, recording each delivered value on p.
func readN[V any](s *ValueSignal[V], p *testutil.Probe[V], n int) arrow.Arrow[int, int] {
	await := s.Await()
	body := arrow.Func[int, arrow.Either[int, int]](func(rt runtime.Runtime, i int, k arrow.Continuation[arrow.Either[int, int]]) {
		await.Call(rt, arrow.Unit{}, func(rt runtime.Runtime, v V) {
			p.Observe(rt, v)
			if i+1 < n {
				k(rt, arrow.Left[int, int](i+1))
				return
			}
			k(rt, arrow.Right[int](i+1))
		})
	})
	return arrow.Fixpoint(body)
}
