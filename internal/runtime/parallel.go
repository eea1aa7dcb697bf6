package runtime

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallel is the multi-worker runtime.
//
// The three queues are shared by a pool of worker goroutines and guarded by
// a single mutex. Workers pop from current and invoke continuations without
// holding the mutex. When a worker finds current empty while no worker is
// busy, the instant has quiesced: that worker becomes the coordinator,
// drains endOfInstant alone, promotes next to current and wakes the pool.
//
// CRITICAL: continuations are never invoked while mu is held, so they may
// freely call back into the On* methods.
type Parallel struct {
	mu   sync.Mutex
	cond *sync.Cond

	current      *queue
	next         *queue
	endOfInstant *queue

	phase   phase
	busy    int // workers currently invoking a continuation
	workers int

	// Per-run state, reset by run.
	stop   bool
	budget int // instants left in this run, <0 for unbounded

	clock  *Clock
	logger *slog.Logger
}

// NewParallel creates a parallel runtime backed by the given number of
// worker goroutines. Fewer than one worker is an invariant violation.
func NewParallel(workers int, opts ...Option) *Parallel {
	if workers < 1 {
		Fatal(ErrCodeInvalidWorkers, fmt.Sprintf("parallel runtime needs at least one worker, got %d", workers))
	}

	cfg := newConfig(opts)
	r := &Parallel{
		current:      newQueue(),
		next:         newQueue(),
		endOfInstant: newQueue(),
		phase:        phaseCurrent,
		workers:      workers,
		clock:        cfg.clock,
		logger:       cfg.logger,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Workers returns the size of the worker pool.
func (r *Parallel) Workers() int {
	return r.workers
}

// OnCurrentInstant implements Runtime.
func (r *Parallel) OnCurrentInstant(k Continuation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == phaseEndOfInstant {
		r.next.push(k)
		return
	}
	r.current.push(k)
	r.cond.Signal()
}

// OnNextInstant implements Runtime.
func (r *Parallel) OnNextInstant(k Continuation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next.push(k)
}

// OnEndOfInstant implements Runtime.
func (r *Parallel) OnEndOfInstant(k Continuation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endOfInstant.push(k)
}

// Now implements Runtime.
func (r *Parallel) Now() int64 {
	return r.clock.Current()
}

// Instant implements Runtime. The worker pool is started for exactly one
// instant barrier and joined before returning.
func (r *Parallel) Instant() bool {
	return r.run(1)
}

// Execute implements Runtime. The worker pool stays up across instants
// until the program drains.
func (r *Parallel) Execute() {
	r.logger.Info("parallel runtime starting", "workers", r.workers)
	r.run(-1)
	r.logger.Info("parallel runtime drained", "instant", r.clock.Current())
}

// run drives the pool for up to instants barriers (unbounded when negative)
// and reports whether current is non-empty afterwards.
func (r *Parallel) run(instants int) bool {
	r.mu.Lock()
	r.stop = false
	r.budget = instants
	r.mu.Unlock()

	var g errgroup.Group
	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			r.work()
			return nil
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.current.empty()
}

// work is the worker loop.
func (r *Parallel) work() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for !r.stop {
		if k, ok := r.current.pop(); ok {
			r.invoke(k)
			continue
		}

		if r.busy == 0 && r.phase == phaseCurrent {
			r.endInstant()
			continue
		}

		r.cond.Wait()
	}
}

// invoke runs k with mu released. Must be called with mu held.
func (r *Parallel) invoke(k Continuation) {
	r.busy++
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.busy--
	}()
	k(r)
}

// endInstant runs the end-of-instant phase and promotes next to current.
// Must be called with mu held, by the single worker that observed quiescence.
func (r *Parallel) endInstant() {
	r.phase = phaseEndOfInstant
	for k, ok := r.endOfInstant.pop(); ok; k, ok = r.endOfInstant.pop() {
		r.invoke(k)
	}
	r.phase = phaseCurrent

	// current is empty here, so the swap leaves next empty.
	r.current, r.next = r.next, r.current
	instant := r.clock.Current()
	r.clock.Next()

	r.logger.Debug("instant complete",
		"instant", instant,
		"next_pending", r.current.len(),
	)

	if r.budget > 0 {
		r.budget--
		if r.budget == 0 {
			r.stop = true
		}
	}
	if r.current.empty() {
		r.stop = true
	}

	r.cond.Broadcast()
}
