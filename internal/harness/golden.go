package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/reactor/internal/trace"
)

// TraceSnapshot captures what a scenario run observed.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Value        *int64
	Instants     int64
	Trace        []trace.Event
}

// NewTraceSnapshot builds the snapshot of a result.
func NewTraceSnapshot(name string, r *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		Value:        r.Value,
		Instants:     r.Instants,
		Trace:        r.Trace,
	}
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	events := make([]any, len(s.Trace))
	for i, e := range s.Trace {
		events[i] = e
	}

	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"instants":      s.Instants,
		"trace":         events,
	}
	if s.Value != nil {
		m["result"] = *s.Value
	}
	return m
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	trace.Sort(s.Trace)
	return trace.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenarioName, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
