package signal

import (
	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
)

// PureSignal carries presence only. Emitting it twice in one instant is the
// same as emitting it once.
type PureSignal struct {
	presence
}

// NewPure creates an absent pure signal.
func NewPure() *PureSignal {
	s := &PureSignal{}
	s.presence.endOfInstant = s.reset
	return s
}

// Emit returns an arrow that makes s present in the current instant and
// then continues on the current instant.
func (s *PureSignal) Emit() arrow.Arrow[arrow.Unit, arrow.Unit] {
	return arrow.Func[arrow.Unit, arrow.Unit](func(rt runtime.Runtime, u arrow.Unit, k arrow.Continuation[arrow.Unit]) {
		s.mu.Lock()
		ready, hook := s.emitLocked()
		s.mu.Unlock()

		s.schedule(rt, ready, hook)
		rt.OnCurrentInstant(func(rt runtime.Runtime) {
			k(rt, u)
		})
	})
}

func (s *PureSignal) reset(rt runtime.Runtime) {
	s.mu.Lock()
	absent := s.resetLocked()
	s.mu.Unlock()

	scheduleNext(rt, absent)
}
