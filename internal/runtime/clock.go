package runtime

import "sync/atomic"

// Clock is the monotonic logical clock that numbers instants.
//
// The value is the instant in progress. It is advanced exactly once per
// instant, at promotion, so work scheduled with OnNextInstant during instant
// i observes i+1.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// Only the goroutine performing promotion calls Next.
type Clock struct {
	instant atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific instant.
// Runtimes start their default clock at 1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.instant.Store(start)
	return c
}

// Next advances the clock and returns the new instant number.
func (c *Clock) Next() int64 {
	return c.instant.Add(1)
}

// Current returns the instant in progress without advancing.
func (c *Clock) Current() int64 {
	return c.instant.Load()
}
