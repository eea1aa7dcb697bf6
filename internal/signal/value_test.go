package signal

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
	"github.com/roach88/reactor/internal/testutil"
)

func s4Programs(s *ValueSignal[int64], p *testutil.Probe[int64]) (arrow.Arrow[arrow.Unit, arrow.Unit], arrow.Arrow[int, int]) {
	emitter := arrow.Chain(
		emitting(s, 32),
		emitting(s, 10),
		arrow.Pause[arrow.Unit](),
		emitting(s, 42),
	)
	return emitter, readN(s, p, 2)
}

func TestScenario_ValuedSum(t *testing.T) {
	s := NewValue(Sum[int64])
	p := testutil.NewProbe[int64]()
	emitter, reader := s4Programs(s, p)

	rt := runtime.NewSequential(quiet())
	arrow.Launch(rt, emitter, arrow.Unit{})
	out := arrow.Launch(rt, reader, 0)
	rt.Execute()

	assert.Equal(t, []testutil.Observation[int64]{
		{Instant: 2, Value: 42},
		{Instant: 3, Value: 42},
	}, p.Observations())
	n, err := out.Result()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestScenario_ValuedSumParallel(t *testing.T) {
	for run := 0; run < 20; run++ {
		s := NewValue(Sum[int64])
		p := testutil.NewProbe[int64]()
		emitter, reader := s4Programs(s, p)

		rt := runtime.NewParallel(4, quiet())
		arrow.Launch(rt, emitter, arrow.Unit{})
		out := arrow.Launch(rt, reader, 0)
		rt.Execute()

		require.True(t, out.Done())
		assert.Equal(t, []int64{2, 3}, p.SortedInstants())
		assert.Equal(t, []int64{42, 42}, p.Values())
	}
}

func TestValue_DeliveredAfterTheEmittingInstant(t *testing.T) {
	s := NewValue(Sum[int])
	p := testutil.NewProbe[int]()
	rt := runtime.NewSequential(quiet())

	arrow.Launch(rt, readN(s, p, 1), 0)
	arrow.Launch(rt, arrow.Chain(arrow.Pause[arrow.Unit](), emitting(s, 7)), arrow.Unit{})
	rt.Execute()

	assert.Equal(t, []testutil.Observation[int]{{Instant: 3, Value: 7}}, p.Observations(),
		"awaiter parked through an instant without emission")
}

func TestValue_AwaitAfterEmissionGetsThatInstantsValue(t *testing.T) {
	s := NewValue(Sum[int])
	p := testutil.NewProbe[int]()
	rt := runtime.NewSequential(quiet())

	arrow.Launch(rt, emitting(s, 5), arrow.Unit{})
	arrow.Launch(rt, readN(s, p, 1), 0)
	rt.Execute()

	assert.Equal(t, []testutil.Observation[int]{{Instant: 2, Value: 5}}, p.Observations())
}

func TestValue_NeverEmittedLeavesNoResult(t *testing.T) {
	s := NewValue(Sum[int])
	_, err := arrow.ExecuteWith[arrow.Unit, int](runtime.NewSequential(quiet()), s.Await(), arrow.Unit{})
	require.ErrorIs(t, err, arrow.ErrNoResult)
}

func TestValue_CombineReduction(t *testing.T) {
	emissions := []int{4, -2, 17, 9, 0, 11, -8, 3}

	tests := []struct {
		name     string
		combine  func(int, int) int
		expected int
	}{
		{name: "sum", combine: Sum[int], expected: 34},
		{name: "max", combine: Max[int], expected: 17},
		{name: "min", combine: Min[int], expected: -8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewValue(tt.combine)
			p := testutil.NewProbe[int]()
			rt := runtime.NewParallel(4, quiet())

			for _, v := range emissions {
				arrow.Launch(rt, emitting(s, v), arrow.Unit{})
			}
			arrow.Launch(rt, readN(s, p, 1), 0)
			rt.Execute()

			assert.Equal(t, []int{tt.expected}, p.Values())
		})
	}
}

func TestValue_PresenceLikePure(t *testing.T) {
	s := NewValue(Sum[int])
	p := testutil.NewProbe[string]()
	rt := runtime.NewSequential(quiet())

	arrow.Launch(rt, Present(s, mark[arrow.Unit](p, "then"), mark[arrow.Unit](p, "else")), arrow.Unit{})
	arrow.Launch(rt, arrow.Bind(AwaitImmediate[arrow.Unit](s), mark[arrow.Unit](p, "immediate")), arrow.Unit{})
	arrow.Launch(rt, emitting(s, 1), arrow.Unit{})
	rt.Execute()

	assert.ElementsMatch(t, []string{"then", "immediate"}, p.Values())
	assert.Equal(t, []int64{1, 1}, p.Instants())
}

func TestWithClone_ClonesPerAwaiter(t *testing.T) {
	var clones atomic.Int64
	s := NewValue(func(a, b []int) []int { return append(a, b...) },
		WithClone(func(v []int) []int {
			clones.Add(1)
			out := make([]int, len(v))
			copy(out, v)
			return out
		}))

	p := testutil.NewProbe[[]int]()
	rt := runtime.NewSequential(quiet())
	for i := 0; i < 3; i++ {
		arrow.Launch(rt, readN(s, p, 1), 0)
	}
	arrow.Launch(rt, arrow.Chain(emitting(s, []int{1}), emitting(s, []int{2})), arrow.Unit{})
	rt.Execute()

	assert.Equal(t, int64(3), clones.Load())
	values := p.Values()
	require.Len(t, values, 3)
	for _, v := range values {
		assert.Equal(t, []int{1, 2}, v)
	}
	values[0][0] = 99
	assert.Equal(t, 1, values[1][0], "awaiters must not share the delivered value")
}

func TestUniq_DeliversToSingleAwaiter(t *testing.T) {
	emitter, awaiter := NewUniq(Sum[int])
	p := testutil.NewProbe[int]()

	read := arrow.Fixpoint(arrow.Func[int, arrow.Either[int, int]](func(rt runtime.Runtime, n int, k arrow.Continuation[arrow.Either[int, int]]) {
		awaiter.Await().Call(rt, arrow.Unit{}, func(rt runtime.Runtime, v int) {
			p.Observe(rt, v)
			if n+1 < 2 {
				k(rt, arrow.Left[int, int](n+1))
				return
			}
			k(rt, arrow.Right[int](n+1))
		})
	}))
	emit := func(v int) arrow.Arrow[arrow.Unit, arrow.Unit] {
		return arrow.Bind(arrow.Value[arrow.Unit](v), emitter.Emit())
	}

	rt := runtime.NewSequential(quiet())
	arrow.Launch(rt, read, 0)
	arrow.Launch(rt, arrow.Chain(emit(1), emit(2), arrow.Pause[arrow.Unit](), emit(5)), arrow.Unit{})
	rt.Execute()

	assert.Equal(t, []testutil.Observation[int]{
		{Instant: 2, Value: 3},
		{Instant: 3, Value: 5},
	}, p.Observations())
}

func TestUniq_EmitterIsASignal(t *testing.T) {
	emitter, _ := NewUniq(Last[string])
	var _ Signal = emitter

	p := testutil.NewProbe[string]()
	prog := arrow.Bind(
		arrow.Bind(arrow.Value[arrow.Unit]("x"), emitter.Emit()),
		Present(emitter, mark[arrow.Unit](p, "then"), mark[arrow.Unit](p, "else")),
	)
	arrow.ExecuteSeq(prog, arrow.Unit{}, quiet())
	assert.Equal(t, []string{"then"}, p.Values())
}

func TestUniq_SecondAwaitIsFatal(t *testing.T) {
	_, awaiter := NewUniq(Sum[int])
	rt := runtime.NewSequential(quiet())
	arrow.Launch(rt, awaiter.Await(), arrow.Unit{})
	arrow.Launch(rt, awaiter.Await(), arrow.Unit{})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*runtime.InvariantError)
		require.True(t, ok)
		assert.Equal(t, runtime.ErrCodeUniqAwaiterBusy, err.Code)
		assert.Equal(t, int64(1), err.Instant)
	}()
	rt.Execute()
}
