package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/reactor/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []trace.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] instant %d %s=%d\n", i+1, event.Instant, event.Label, event.Value)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against the canonical trace and
// returns the failure messages.
func EvaluateAssertions(events []trace.Event, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(events, a)
		case AssertTraceOrder:
			err = assertTraceOrder(events, a)
		case AssertTraceCount:
			err = assertTraceCount(events, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// assertTraceContains checks for an event with the label, narrowed by
// instant and value when the assertion sets them.
func assertTraceContains(events []trace.Event, a Assertion) error {
	for _, e := range events {
		if e.Label != a.Label {
			continue
		}
		if a.Instant != nil && e.Instant != *a.Instant {
			continue
		}
		if a.Value != nil && e.Value != *a.Value {
			continue
		}
		return nil
	}

	expected := fmt.Sprintf("label %s", a.Label)
	if a.Instant != nil {
		expected += fmt.Sprintf(" in instant %d", *a.Instant)
	}
	if a.Value != nil {
		expected += fmt.Sprintf(" with value %d", *a.Value)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    events,
	}
}

// assertTraceOrder checks that the first occurrences of the labels fall in
// strictly increasing instants. Intervening events are allowed. Labels first
// logged in the same instant fail: order within an instant is unspecified.
func assertTraceOrder(events []trace.Event, a Assertion) error {
	first := make(map[string]int64)
	for _, e := range events {
		if at, seen := first[e.Label]; !seen || e.Instant < at {
			first[e.Label] = e.Instant
		}
	}

	for _, label := range a.Labels {
		if _, ok := first[label]; !ok {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all labels present: %v", a.Labels),
				Actual:   fmt.Sprintf("missing label: %s", label),
				Trace:    events,
			}
		}
	}

	for i := 1; i < len(a.Labels); i++ {
		prev, curr := a.Labels[i-1], a.Labels[i]
		switch {
		case first[prev] == first[curr]:
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("labels in order: %v", a.Labels),
				Actual: fmt.Sprintf("%s and %s are first logged in the same instant %d; order within an instant is unspecified",
					prev, curr, first[prev]),
				Trace: events,
			}
		case first[prev] > first[curr]:
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("labels in order: %v", a.Labels),
				Actual: fmt.Sprintf("%s (instant %d) should be before %s (instant %d)",
					prev, first[prev], curr, first[curr]),
				Trace: events,
			}
		}
	}

	return nil
}

// assertTraceCount checks that the label is logged exactly Count times.
func assertTraceCount(events []trace.Event, a Assertion) error {
	count := 0
	for _, e := range events {
		if e.Label == a.Label {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Label),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    events,
		}
	}
	return nil
}
