package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/program"
	"github.com/roach88/reactor/internal/runtime"
	"github.com/roach88/reactor/internal/trace"
)

// Option configures a run.
type Option func(*config)

type config struct {
	maxInstants int64
	workers     int
	logger      *slog.Logger
}

// WithMaxInstants sets the instant quota of a run.
//
// Default: DefaultMaxInstants
func WithMaxInstants(n int64) Option {
	return func(c *config) {
		c.maxInstants = n
	}
}

// WithWorkers forces the parallel runtime with n workers, overriding the
// scenario's runtime section. Zero keeps the scenario's choice.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithLogger sets the logger handed to the runtime and the compiler.
//
// Default: a logger that discards everything, so test output stays clean.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Every run compiles the program afresh (fresh signals, fresh recorder) and
// drives a fresh runtime one instant at a time under the instant quota.
// Expectation and assertion failures are reported in the Result; errors
// are returned for programs that do not compile, runs that exceed the
// quota, and invariant violations on the sequential runtime.
//
// Invariant violations on the parallel runtime happen on worker
// goroutines and abort the process.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	cfg := config{
		maxInstants: DefaultMaxInstants,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	rec := trace.NewRecorder()
	prog, err := program.Compile(&s.Program, s.Signals,
		program.WithRecorder(rec),
		program.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile program: %w", err)
	}

	workers := s.Workers()
	if cfg.workers > 0 {
		workers = cfg.workers
	}
	var rt runtime.Runtime
	if workers > 0 {
		rt = runtime.NewParallel(workers, runtime.WithLogger(cfg.logger))
	} else {
		rt = runtime.NewSequential(runtime.WithLogger(cfg.logger))
	}

	out := arrow.Launch(rt, prog.Arrow, s.Input)
	instants, err := drive(rt, NewInstantQuota(cfg.maxInstants), s.Name)
	if err != nil {
		return nil, err
	}

	result := NewResult(s.Name)
	result.Instants = instants
	if v, err := out.Result(); err == nil {
		result.Value = &v
	}
	result.Trace = rec.Snapshot()
	if result.Digest, err = trace.Digest(result.Trace); err != nil {
		return nil, err
	}

	cfg.logger.Debug("scenario executed",
		"scenario", s.Name,
		"instants", instants,
		"events", len(result.Trace),
		"nodes", prog.Nodes,
	)

	checkExpect(result, s.Expect)
	for _, msg := range EvaluateAssertions(result.Trace, s.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// drive runs instants until rt drains and returns how many ran.
func drive(rt runtime.Runtime, quota *InstantQuota, name string) (instants int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invariant violation in instant %d: %w", instants+1, runtime.Recover(r, nil))
		}
	}()

	for {
		if err := quota.Check(name); err != nil {
			return instants, err
		}
		more := rt.Instant()
		instants++
		if !more {
			return instants, nil
		}
	}
}

func checkExpect(r *Result, exp Expect) {
	switch {
	case exp.NoResult && r.Value != nil:
		r.AddError(fmt.Sprintf("expected no result, got %d", *r.Value))
	case exp.Result != nil && r.Value == nil:
		r.AddError(fmt.Sprintf("expected result %d, program produced none", *exp.Result))
	case exp.Result != nil && *exp.Result != *r.Value:
		r.AddError(fmt.Sprintf("expected result %d, got %d", *exp.Result, *r.Value))
	}

	if exp.Instants > 0 && exp.Instants != r.Instants {
		r.AddError(fmt.Sprintf("expected %d instants, ran %d", exp.Instants, r.Instants))
	}

	if exp.Trace != nil && !trace.Equal(exp.Trace, r.Trace) {
		r.AddError(fmt.Sprintf("trace mismatch:\n  expected: %s\n  actual:   %s",
			formatEvents(exp.Trace), formatEvents(r.Trace)))
	}
}

func formatEvents(events []trace.Event) string {
	b, err := trace.MarshalEvents(events)
	if err != nil {
		return fmt.Sprintf("%v", events)
	}
	return string(b)
}
