package runtime

import (
	"errors"
	"fmt"
)

// InvariantError reports a violated runtime invariant.
//
// Invariant violations indicate a bug in the runtime or in the program
// driving it; they are raised with Fatal and are not meant to be recovered
// from, except by test code and by outer tooling that wants to report them.
type InvariantError struct {
	// Code identifies the violated invariant.
	Code InvariantCode

	// Message is a human-readable description.
	Message string

	// Instant is the instant in progress when the violation was detected,
	// or 0 when unknown.
	Instant int64

	// Details contains additional context.
	Details map[string]string
}

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// ErrCodeJoinDoubleArrival indicates a product join received a second
	// value for a slot that was already filled.
	ErrCodeJoinDoubleArrival InvariantCode = "JOIN_DOUBLE_ARRIVAL"

	// ErrCodeSpentContinuation indicates a one-shot continuation was taken twice.
	ErrCodeSpentContinuation InvariantCode = "SPENT_CONTINUATION"

	// ErrCodeNoResult indicates a program drained without producing a value.
	ErrCodeNoResult InvariantCode = "NO_RESULT"

	// ErrCodeForeignGoroutine indicates a sequential runtime was used from a
	// goroutine other than its owner.
	ErrCodeForeignGoroutine InvariantCode = "FOREIGN_GOROUTINE"

	// ErrCodeUniqAwaiterBusy indicates a second await on a uniq signal while
	// the first is still parked.
	ErrCodeUniqAwaiterBusy InvariantCode = "UNIQ_AWAITER_BUSY"

	// ErrCodeInvalidWorkers indicates a parallel runtime with fewer than one worker.
	ErrCodeInvalidWorkers InvariantCode = "INVALID_WORKERS"
)

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Instant > 0 {
		return fmt.Sprintf("%s: %s (instant=%d)", e.Code, e.Message, e.Instant)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvariantError creates an InvariantError without raising it.
func NewInvariantError(code InvariantCode, message string) *InvariantError {
	return &InvariantError{
		Code:    code,
		Message: message,
	}
}

// Fatal raises an invariant violation. It never returns.
func Fatal(code InvariantCode, message string) {
	panic(NewInvariantError(code, message))
}

// FatalAt raises an invariant violation observed during the given instant.
func FatalAt(instant int64, code InvariantCode, message string) {
	err := NewInvariantError(code, message)
	err.Instant = instant
	panic(err)
}

// IsInvariantError returns true if err is or wraps an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// InvariantCodeOf returns the code of the InvariantError in err's chain,
// or "" when there is none.
func InvariantCodeOf(err error) InvariantCode {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// Recover converts a recovered panic value back into an error. Values that
// are not invariant violations are re-panicked. Intended for deferred use by
// tooling that reports violations instead of crashing:
//
//	defer func() { err = runtime.Recover(recover(), err) }()
func Recover(r any, err error) error {
	if r == nil {
		return err
	}
	if ie, ok := r.(*InvariantError); ok {
		return ie
	}
	panic(r)
}
