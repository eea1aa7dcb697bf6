package runtime

import "log/slog"

// Continuation is the unit of scheduled work: a one-shot callback invoked
// with the runtime that dequeued it.
type Continuation func(rt Runtime)

// Runtime is the contract shared by the sequential and parallel schedulers.
//
// Thread-safety model:
//   - Sequential: every method must be called from the owning goroutine.
//   - Parallel: the On* methods and Now are safe from any worker goroutine;
//     Instant and Execute must not be called concurrently with each other.
type Runtime interface {
	// OnCurrentInstant schedules k for the instant in progress. During the
	// end-of-instant phase k is scheduled for the next instant instead.
	OnCurrentInstant(k Continuation)

	// OnNextInstant schedules k for the following instant.
	OnNextInstant(k Continuation)

	// OnEndOfInstant schedules k to run after the current queue drains.
	OnEndOfInstant(k Continuation)

	// Instant runs one logical instant and reports whether more work exists.
	Instant() bool

	// Execute runs instants until no work remains.
	Execute()

	// Now returns the 1-based number of the instant in progress.
	Now() int64
}

// phase records which queue is being drained.
type phase int

const (
	phaseCurrent phase = iota
	phaseEndOfInstant
)

// config holds the settings shared by both runtime variants.
type config struct {
	logger *slog.Logger
	clock  *Clock
}

// Option configures a runtime.
type Option func(*config)

// WithLogger sets the structured logger used for instant transitions.
//
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock sets the logical clock. The clock must be positioned at the
// instant the runtime should report first (see NewClockAt).
func WithClock(clock *Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.clock == nil {
		c.clock = NewClockAt(1)
	}
	return c
}
