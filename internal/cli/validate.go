package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/reactor/internal/harness"
	"github.com/roach88/reactor/internal/program"
)

// ValidationError describes one invalid scenario file.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenarios without running them",
		Long: `Validate scenario files without running them.

Each file is parsed strictly, checked against the scenario schema, and its
program is compiled. Nothing is executed.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result := ValidationResult{Valid: true, Files: len(files)}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		if verr := validateFile(file); verr != nil {
			result.Valid = false
			result.Errors = append(result.Errors, *verr)
		}
	}

	if result.Valid {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %d scenario(s) valid\n", result.Files)
		return nil
	}

	return outputValidationErrors(formatter, result)
}

// validateFile loads and compiles one scenario.
func validateFile(file string) *ValidationError {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		code, _ := classifyLoadError(err)
		return &ValidationError{File: file, Code: code, Message: err.Error()}
	}

	if _, err := program.Compile(&scenario.Program, scenario.Signals); err != nil {
		code := ErrCodeGeneric
		if isCompileError(err) {
			code = ErrCodeCompile
		}
		return &ValidationError{File: file, Code: code, Message: err.Error()}
	}
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))

	if formatter.Format == "json" {
		if err := formatter.Failure(result.Errors[0].Code, result.Errors[0].Message, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	writeValidationText(formatter.Writer, result)
	return NewExitError(ExitFailure, msg)
}

func writeValidationText(w io.Writer, result ValidationResult) {
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  [%s] %s: %s\n", e.Code, e.File, e.Message)
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
