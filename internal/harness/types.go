package harness

import "github.com/roach88/reactor/internal/trace"

// Result is the outcome of a scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass indicates overall test success.
	// True if every expectation and assertion holds.
	Pass bool `json:"pass"`

	// Value is the program's result, nil if it produced none.
	Value *int64 `json:"result,omitempty"`

	// Instants is the number of instants run until the runtime drained.
	Instants int64 `json:"instants"`

	// Trace holds the logged events in canonical order.
	Trace []trace.Event `json:"trace"`

	// Digest is the trace digest (see trace.Digest).
	Digest string `json:"digest"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Trace:  []trace.Event{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
