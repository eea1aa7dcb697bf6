package harness

import (
	"errors"
	"fmt"
)

// DefaultMaxInstants bounds a scenario run.
const DefaultMaxInstants = 10000

// InstantQuota counts the instants of one run and enforces a maximum.
//
// Reactive programs may legitimately never drain (a forked ticker loop, a
// present loop waiting on a signal nobody emits). The quota turns those
// into an error instead of a hung test.
type InstantQuota struct {
	maxInstants int64
	current     int64
}

// NewInstantQuota creates a quota allowing maxInstants instants.
func NewInstantQuota(maxInstants int64) *InstantQuota {
	return &InstantQuota{maxInstants: maxInstants}
}

// Check counts one more instant and validates it against the limit.
// Call it before running each instant.
func (q *InstantQuota) Check(scenario string) error {
	q.current++
	if q.current > q.maxInstants {
		return &InstantsExceededError{
			Scenario: scenario,
			Instants: q.current,
			Limit:    q.maxInstants,
		}
	}
	return nil
}

// Current returns the number of instants counted.
func (q *InstantQuota) Current() int64 {
	return q.current
}

// Max returns the limit.
func (q *InstantQuota) Max() int64 {
	return q.maxInstants
}

// InstantsExceededError is returned when a run exceeds its instant quota.
type InstantsExceededError struct {
	Scenario string
	Instants int64
	Limit    int64
}

// Error implements the error interface.
func (e *InstantsExceededError) Error() string {
	return fmt.Sprintf("scenario %s exceeded max instants quota: %d instants > %d limit",
		e.Scenario, e.Instants, e.Limit)
}

// IsInstantsExceededError returns true if the error is an InstantsExceededError.
// Uses errors.As to handle wrapped errors.
func IsInstantsExceededError(err error) bool {
	var ie *InstantsExceededError
	return errors.As(err, &ie)
}
