package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/quadbench/internal/config"
)

// ValidationError is one problem found in a suite file.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Suite       *config.Suite     `json:"suite,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Errors      []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite.cue>",
		Short: "Validate a suite file without running it",
		Long: `Validate a CUE suite file against the suite schema and print the
resolved suite, defaults included, with its fingerprint.

Exit codes:
  0 - Suite is valid
  1 - Suite is invalid
  2 - Suite file could not be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Validating %s", path)

	suite, err := config.Load(path)
	if err != nil {
		var ce *config.ConfigError
		if !errors.As(err, &ce) {
			if errors.Is(err, fs.ErrNotExist) {
				return formatter.Fail(ExitCommandError, ErrCodeNotFound, "suite file not found", err)
			}
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to read suite", err)
		}
		return outputValidationFailure(formatter, cmd, ce)
	}

	fingerprint, err := suite.Fingerprint()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to fingerprint suite", err)
	}

	result := ValidationResult{Valid: true, Suite: suite, Fingerprint: fingerprint}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ suite %s is valid\n", suite.Name)
	fmt.Fprintf(w, "  forms:       %v\n", suite.Forms)
	fmt.Fprintf(w, "  method:      %s\n", suite.Method)
	fmt.Fprintf(w, "  repetitions: %d\n", suite.Repetitions)
	fmt.Fprintf(w, "  library:     %s\n", suite.Library)
	fmt.Fprintf(w, "  fingerprint: %s\n", fingerprint)
	return nil
}

func outputValidationFailure(formatter *OutputFormatter, cmd *cobra.Command, ce *config.ConfigError) error {
	ve := ValidationError{
		Field:   ce.Field,
		Message: ce.Message,
		Code:    ErrCodeInvalidSuite,
	}
	if ce.Pos.IsValid() {
		ve.File = ce.Pos.Filename()
		ve.Line = ce.Pos.Line()
		ve.Column = ce.Pos.Column()
	}

	if formatter.Format == "json" {
		if err := formatter.Error(ErrCodeInvalidSuite, "suite validation failed", ValidationResult{
			Valid:  false,
			Errors: []ValidationError{ve},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", ce.Error())
	}
	return WrapExitError(ExitFailure, "suite validation failed", ce)
}
