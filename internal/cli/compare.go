package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/quadbench/internal/config"
	"github.com/roach88/quadbench/internal/harness"
	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Repetitions int
	Library     string
	Method      string
	Foreign     string
	Tolerance   float64

	// Clock allows overriding time (for testing).
	Clock harness.Clock
}

// CompareReport is the JSON payload of the compare command.
type CompareReport struct {
	Host       MeasurementReport `json:"host"`
	Foreign    MeasurementReport `json:"foreign"`
	Difference float64           `json:"difference"`
	Agree      bool              `json:"agree"`
	TimeRatio  float64           `json:"time_ratio"` // foreign elapsed / host elapsed; 0 if host took no measurable time
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	return newCompareCommand(&CompareOptions{RootOptions: rootOpts})
}

func newCompareCommand(opts *CompareOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the Go integrand with a native one",
		Long: `Time the Go integrand and a native integrand with the same number of
repetitions, then print both integration results, both elapsed times, the
absolute difference of the estimates and the ratio of the elapsed times.

Exits with code 1 when the estimates differ by more than --tolerance.

Example:
  quadbench compare --reps 100000
  quadbench compare --foreign cgo --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Repetitions, "reps", "n", config.DefaultRepetitions, "integrations per form")
	cmd.Flags().StringVar(&opts.Library, "lib", config.DefaultLibrary, "path to the native integrand library")
	cmd.Flags().StringVar(&opts.Method, "method", quadrature.MethodAdaptive, "integration method (adaptive|legendre)")
	cmd.Flags().StringVar(&opts.Foreign, "foreign", string(integrand.FormShared), "native form to compare against (cgo|shared)")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", harness.DefaultAgreementTolerance, "maximum allowed difference between estimates")

	return cmd
}

func runCompare(opts *CompareOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	foreign, err := integrand.ParseForm(opts.Foreign)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "invalid foreign form", err)
	}
	if !foreign.IsForeign() {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "invalid foreign form",
			fmt.Errorf("form %s is not native", foreign))
	}
	if opts.Repetitions < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "invalid repetitions",
			fmt.Errorf("%w: got %d", harness.ErrInvalidRepetitions, opts.Repetitions))
	}
	integrator, err := quadrature.New(opts.Method)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "invalid method", err)
	}

	lib, bindings, err := resolveForms([]integrand.Form{integrand.FormGo, foreign}, nil, opts.Library, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLibrary, "failed to load native library", err)
	}
	if lib != nil {
		defer func() {
			if closeErr := lib.Close(); closeErr != nil {
				logger.Error("error closing native library", "error", closeErr)
			}
		}()
	}

	timer := &harness.Timer{
		Integrator: integrator,
		Method:     opts.Method,
		Clock:      opts.Clock,
		Logger:     logger,
	}

	measurements := make([]*harness.Measurement, 0, len(bindings))
	for _, b := range bindings {
		m, err := timer.Time(harness.Batch{Form: b.Form, Integrand: b.Integrand, Repetitions: opts.Repetitions})
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeIntegration, "integration failed", err)
		}
		measurements = append(measurements, m)
	}
	host, native := measurements[0], measurements[1]

	report := CompareReport{
		Host:       newMeasurementReport(host),
		Foreign:    newMeasurementReport(native),
		Difference: math.Abs(host.Result.Estimate - native.Result.Estimate),
	}
	report.Agree = report.Difference <= opts.Tolerance
	if host.Elapsed > 0 {
		report.TimeRatio = native.Elapsed.Seconds() / host.Elapsed.Seconds()
	}

	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, formatMeasurement(host))
		fmt.Fprintln(w, formatMeasurement(native))
		fmt.Fprintf(w, "difference %.3g\n", report.Difference)
		fmt.Fprintf(w, "time ratio %s/%s %.3f\n", native.Form, host.Form, report.TimeRatio)
	}

	if !report.Agree {
		return NewExitError(ExitFailure,
			fmt.Sprintf("estimates differ by %.3g, more than %g", report.Difference, opts.Tolerance))
	}
	return nil
}
