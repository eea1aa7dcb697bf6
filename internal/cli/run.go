package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reactor/internal/harness"
	"github.com/roach88/reactor/internal/program"
	"github.com/roach88/reactor/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Workers     int
	MaxInstants int64
	Database    string

	// IDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator

	// Now allows overriding the clock stamped on stored runs (for testing).
	Now func() time.Time
}

// RunOutput is the payload of the run command.
type RunOutput struct {
	*harness.Result
	Runtime string `json:"runtime"`
	Workers int    `json:"workers,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute one scenario",
		Long: `Execute a scenario and print its result, instant count and trace.

The program runs on the runtime named by the scenario unless --workers
forces the parallel runtime. With --db the run and its trace are recorded
in a SQLite database (created if it doesn't exist).

Exit codes:
  0 - Scenario passed
  1 - Expectations failed or the run aborted
  2 - Command error (unreadable scenario, bad database, etc.)

Examples:
  reactor run ./scenarios/s1.yaml
  reactor run ./scenarios/s6.yaml --workers 8 --format json
  reactor run ./scenarios/s1.yaml --db ./runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "force the parallel runtime with N workers")
	cmd.Flags().Int64Var(&opts.MaxInstants, "max-instants", harness.DefaultMaxInstants, "abort after N instants")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Workers < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --workers %d: must be >= 0", opts.Workers))
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		code, exit := classifyLoadError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(exit, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %s from %s", scenario.Name, path)

	result, err := harness.Run(scenario, runHarnessOptions(opts)...)
	if err != nil {
		code := ErrCodeExecution
		if isCompileError(err) {
			code = ErrCodeCompile
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "scenario did not run", err)
	}

	out := RunOutput{
		Result:  result,
		Runtime: store.RuntimeSequential,
		Workers: effectiveWorkers(scenario, opts.Workers),
	}
	if out.Workers > 0 {
		out.Runtime = store.RuntimeParallel
	}

	if opts.Database != "" {
		out.RunID, err = recordRun(cmd, opts, scenario, out)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		slog.Info("run recorded", "run", out.RunID, "db", opts.Database)
	}

	if opts.Format == "json" {
		if !result.Pass {
			if err := formatter.Failure(ErrCodeFailed, "scenario failed", out); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", result.Name))
		}
		return formatter.Success(out)
	}

	writeRunText(cmd.OutOrStdout(), out)
	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", result.Name))
	}
	return nil
}

func runHarnessOptions(opts *RunOptions) []harness.Option {
	hopts := []harness.Option{
		harness.WithMaxInstants(opts.MaxInstants),
		harness.WithWorkers(opts.Workers),
	}
	if opts.Verbose {
		hopts = append(hopts, harness.WithLogger(slog.Default()))
	}
	return hopts
}

// effectiveWorkers mirrors harness.WithWorkers: a positive override wins.
func effectiveWorkers(s *harness.Scenario, override int) int {
	if override > 0 {
		return override
	}
	return s.Workers()
}

func recordRun(cmd *cobra.Command, opts *RunOptions, s *harness.Scenario, out RunOutput) (string, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	run := store.Run{
		ID:        gen.Generate(),
		Scenario:  s.Name,
		Runtime:   out.Runtime,
		Workers:   out.Workers,
		Input:     s.Input,
		Result:    out.Value,
		Instants:  out.Instants,
		Digest:    out.Digest,
		Pass:      out.Pass,
		CreatedAt: now(),
	}
	if err := st.WriteRun(cmd.Context(), run, out.Trace); err != nil {
		return "", err
	}
	return run.ID, nil
}

func writeRunText(w io.Writer, out RunOutput) {
	mark := "✓"
	if !out.Pass {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", mark, out.Name)

	if out.Value != nil {
		fmt.Fprintf(w, "  result:   %d\n", *out.Value)
	} else {
		fmt.Fprintln(w, "  result:   none")
	}
	fmt.Fprintf(w, "  instants: %d\n", out.Instants)
	if out.Workers > 0 {
		fmt.Fprintf(w, "  runtime:  %s (%d workers)\n", out.Runtime, out.Workers)
	} else {
		fmt.Fprintf(w, "  runtime:  %s\n", out.Runtime)
	}
	fmt.Fprintf(w, "  digest:   %s\n", out.Digest)
	if out.RunID != "" {
		fmt.Fprintf(w, "  run:      %s\n", out.RunID)
	}

	if len(out.Trace) > 0 {
		fmt.Fprintln(w, "  trace:")
		for _, ev := range out.Trace {
			fmt.Fprintf(w, "    [%d] %s = %d\n", ev.Instant, ev.Label, ev.Value)
		}
	}
	for _, e := range out.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// classifyLoadError maps a scenario load error to an error code and an
// exit code. Unreadable files are command errors; malformed ones are
// validation failures.
func classifyLoadError(err error) (string, int) {
	var schemaErr *harness.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		return ErrCodeSchema, ExitFailure
	case isNotExist(err):
		return ErrCodeNotFound, ExitCommandError
	default:
		return ErrCodeLoadFailed, ExitFailure
	}
}

func isCompileError(err error) bool {
	var compileErr *program.CompileError
	return errors.As(err, &compileErr)
}
