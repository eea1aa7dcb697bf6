package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reactor/internal/program"
	"github.com/roach88/reactor/internal/trace"
)

// Runtime kinds.
const (
	RuntimeSequential = "seq"
	RuntimeParallel   = "par"
)

// DefaultWorkers is the pool size of a parallel scenario that names none.
const DefaultWorkers = 4

// Scenario defines a program run and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Runtime selects the scheduler.
	Runtime RuntimeSpec `yaml:"runtime,omitempty"`

	// Input is the value the program starts with.
	Input int64 `yaml:"input,omitempty"`

	// Signals declares the signals the program refers to.
	Signals []program.SignalDecl `yaml:"signals,omitempty"`

	// Program is the root node of the program tree.
	Program yaml.Node `yaml:"program"`

	// Expect lists the checks on the run.
	Expect Expect `yaml:"expect"`

	// Assertions are additional checks on the trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// RuntimeSpec selects the scheduler of a scenario.
type RuntimeSpec struct {
	Kind    string `yaml:"kind,omitempty"`
	Workers int    `yaml:"workers,omitempty"`
}

// Expect specifies the expected outcome of a run. Unset fields are not
// checked.
type Expect struct {
	Result   *int64        `yaml:"result,omitempty"`
	NoResult bool          `yaml:"no_result,omitempty"`
	Instants int64         `yaml:"instants,omitempty"`
	Trace    []trace.Event `yaml:"trace,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count.
	Type string `yaml:"type"`

	// Label is the logged label (trace_contains, trace_count).
	Label string `yaml:"label,omitempty"`

	// Instant and Value narrow trace_contains when set.
	Instant *int64 `yaml:"instant,omitempty"`
	Value   *int64 `yaml:"value,omitempty"`

	// Labels is the expected order (trace_order).
	Labels []string `yaml:"labels,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir whose file name
// matches pattern (a filepath.Match glob; empty matches all), sorted by
// file name.
func LoadDir(dir, pattern string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if pattern != "" {
			ok, err := filepath.Match(pattern, e.Name())
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Runtime.Kind {
	case "", RuntimeSequential:
		if s.Runtime.Workers != 0 {
			return fmt.Errorf("runtime: workers only applies to kind %q", RuntimeParallel)
		}
	case RuntimeParallel:
		if s.Runtime.Workers < 0 {
			return fmt.Errorf("runtime: workers must be positive, got %d", s.Runtime.Workers)
		}
	default:
		return fmt.Errorf("runtime: unknown kind %q", s.Runtime.Kind)
	}

	if s.Program.Kind == 0 {
		return fmt.Errorf("program is required")
	}

	for i, decl := range s.Signals {
		if decl.Name == "" {
			return fmt.Errorf("signals[%d]: name is required", i)
		}
	}

	if s.Expect.NoResult && s.Expect.Result != nil {
		return fmt.Errorf("expect: result and no_result are mutually exclusive")
	}
	if s.Expect.Instants < 0 {
		return fmt.Errorf("expect: instants must be positive, got %d", s.Expect.Instants)
	}
	for i, e := range s.Expect.Trace {
		if e.Instant < 1 {
			return fmt.Errorf("expect.trace[%d]: instant must be at least 1", i)
		}
		if e.Label == "" {
			return fmt.Errorf("expect.trace[%d]: label is required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Label == "" {
			return fmt.Errorf("assertions[%d]: label is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Labels) == 0 {
			return fmt.Errorf("assertions[%d]: labels list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Label == "" {
			return fmt.Errorf("assertions[%d]: label is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// Workers returns the pool size the scenario asks for, or 0 for the
// sequential runtime.
func (s *Scenario) Workers() int {
	if s.Runtime.Kind != RuntimeParallel {
		return 0
	}
	if s.Runtime.Workers == 0 {
		return DefaultWorkers
	}
	return s.Runtime.Workers
}
