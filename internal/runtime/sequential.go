package runtime

import (
	"fmt"
	"log/slog"

	"github.com/petermattis/goid"
)

// Sequential is the single-goroutine runtime.
//
// All work runs on the goroutine that drives Instant/Execute. Queues are
// unsynchronized; the owner goroutine is recorded on first use and every
// later enqueue or instant is checked against it.
type Sequential struct {
	current      *queue
	next         *queue
	endOfInstant *queue

	phase  phase
	clock  *Clock
	logger *slog.Logger

	owner int64 // goroutine id, 0 until first use
}

// NewSequential creates a sequential runtime with empty queues.
func NewSequential(opts ...Option) *Sequential {
	cfg := newConfig(opts)
	return &Sequential{
		current:      newQueue(),
		next:         newQueue(),
		endOfInstant: newQueue(),
		phase:        phaseCurrent,
		clock:        cfg.clock,
		logger:       cfg.logger,
	}
}

// OnCurrentInstant implements Runtime.
func (r *Sequential) OnCurrentInstant(k Continuation) {
	r.checkOwner()
	if r.phase == phaseEndOfInstant {
		r.next.push(k)
		return
	}
	r.current.push(k)
}

// OnNextInstant implements Runtime.
func (r *Sequential) OnNextInstant(k Continuation) {
	r.checkOwner()
	r.next.push(k)
}

// OnEndOfInstant implements Runtime.
func (r *Sequential) OnEndOfInstant(k Continuation) {
	r.checkOwner()
	r.endOfInstant.push(k)
}

// Now implements Runtime.
func (r *Sequential) Now() int64 {
	return r.clock.Current()
}

// Instant implements Runtime.
func (r *Sequential) Instant() bool {
	r.checkOwner()

	for k, ok := r.current.pop(); ok; k, ok = r.current.pop() {
		k(r)
	}

	r.phase = phaseEndOfInstant
	for k, ok := r.endOfInstant.pop(); ok; k, ok = r.endOfInstant.pop() {
		k(r)
	}
	r.phase = phaseCurrent

	r.current, r.next = r.next, r.current
	instant := r.clock.Current()
	r.clock.Next()

	r.logger.Debug("instant complete",
		"instant", instant,
		"next_pending", r.current.len(),
	)

	return !r.current.empty()
}

// Execute implements Runtime.
func (r *Sequential) Execute() {
	for r.Instant() {
	}
}

// Pending returns the number of continuations queued for the current
// instant, the next instant and the end of the current instant.
func (r *Sequential) Pending() (current, next, endOfInstant int) {
	return r.current.len(), r.next.len(), r.endOfInstant.len()
}

// checkOwner binds the runtime to the calling goroutine on first use and
// rejects every call from any other goroutine afterwards.
func (r *Sequential) checkOwner() {
	gid := goid.Get()
	if r.owner == 0 {
		r.owner = gid
		return
	}
	if r.owner != gid {
		FatalAt(r.clock.Current(), ErrCodeForeignGoroutine,
			fmt.Sprintf("sequential runtime owned by goroutine %d used from goroutine %d", r.owner, gid))
	}
}
