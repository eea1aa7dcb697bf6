package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reactor/internal/store"
	"github.com/roach88/reactor/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Label    string // optional - filter to one label
}

// TraceResult holds the trace output of a stored run.
type TraceResult struct {
	Run      store.Run     `json:"run"`
	Events   []trace.Event `json:"events"`
	DigestOK bool          `json:"digest_ok"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the trace of a stored run",
		Long: `Show a stored run and its trace.

The stored events are re-digested and compared with the digest recorded
for the run; a mismatch exits with status 1.

Examples:
  reactor trace --db ./runs.db --run 01936f2e-...
  reactor trace --db ./runs.db --run 01936f2e-... --label A
  reactor trace --db ./runs.db --run 01936f2e-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.Label, "label", "", "only show events with this label")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		msg := fmt.Sprintf("run not found: %s", opts.RunID)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	events, err := st.ReadEvents(ctx, opts.RunID)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	digest, err := trace.Digest(events)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest trace", err)
	}

	result := TraceResult{
		Run:      run,
		Events:   filterEvents(events, opts.Label),
		DigestOK: digest == run.Digest,
	}

	if opts.Format == "json" {
		if !result.DigestOK {
			if err := formatter.Failure(ErrCodeDigest, "stored trace does not match its digest", result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "digest mismatch")
		}
		return formatter.Success(result)
	}

	writeTraceText(formatter.Writer, result)
	if !result.DigestOK {
		return NewExitError(ExitFailure, "digest mismatch")
	}
	return nil
}

func filterEvents(events []trace.Event, label string) []trace.Event {
	if label == "" {
		return events
	}
	out := []trace.Event{}
	for _, ev := range events {
		if ev.Label == label {
			out = append(out, ev)
		}
	}
	return out
}

func writeTraceText(w io.Writer, result TraceResult) {
	run := result.Run

	fmt.Fprintf(w, "Run: %s\n", run.ID)
	fmt.Fprintf(w, "Scenario: %s\n", run.Scenario)
	fmt.Fprintf(w, "Runtime: %s", run.Runtime)
	if run.Workers > 0 {
		fmt.Fprintf(w, " (%d workers)", run.Workers)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Input: %d\n", run.Input)
	if run.Result != nil {
		fmt.Fprintf(w, "Result: %d\n", *run.Result)
	} else {
		fmt.Fprintln(w, "Result: none")
	}
	fmt.Fprintf(w, "Instants: %d\n", run.Instants)
	fmt.Fprintf(w, "Pass: %t\n", run.Pass)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Timeline:")
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Events {
		fmt.Fprintf(w, "  [%d] %s = %d\n", ev.Instant, ev.Label, ev.Value)
	}

	fmt.Fprintln(w)
	if result.DigestOK {
		fmt.Fprintf(w, "✓ digest %s\n", run.Digest)
	} else {
		fmt.Fprintf(w, "✗ digest mismatch (recorded %s)\n", run.Digest)
	}
}
