package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/quadbench/internal/config"
	"github.com/roach88/quadbench/internal/ffi"
	"github.com/roach88/quadbench/internal/harness"
	"github.com/roach88/quadbench/internal/metrics"
	"github.com/roach88/quadbench/internal/quadrature"
	"github.com/roach88/quadbench/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Forms       []string
	Repetitions int
	Library     string
	Method      string
	Sample      bool
	Database    string
	MetricsFile string

	// Clock and IDGenerator allow overriding time and run IDs (for testing).
	// If nil, they default to harness.SystemClock and store.UUIDv7Generator.
	Clock       harness.Clock
	IDGenerator store.IDGenerator
}

// RunReport is the JSON payload of the run command.
type RunReport struct {
	Suite       string              `json:"suite"`
	Fingerprint string              `json:"fingerprint"`
	RunID       string              `json:"run_id,omitempty"`
	Method      string              `json:"method"`
	Repetitions int                 `json:"repetitions"`
	Reference   float64             `json:"reference"`
	Results     []MeasurementReport `json:"results"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [suite.cue]",
		Short: "Time repeated integrations for each integrand form",
		Long: `Integrate cos(x)/x³ over [π, 2π] N times per integrand form and report
the elapsed wall-clock time of each batch.

Without a suite file the built-in suite is used: the go and shared forms,
100000 repetitions each. Flags override suite fields. Every form is resolved,
and the native library loaded, before the first batch is timed.

Example:
  quadbench run
  quadbench run --form go --form cgo --reps 10000
  quadbench run suites/nightly.cue --db history.db --metrics-file quadbench.prom`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			suitePath := ""
			if len(args) == 1 {
				suitePath = args[0]
			}
			return runBenchmark(opts, suitePath, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Forms, "form", nil, "integrand form to time: go, cgo or shared (repeatable)")
	cmd.Flags().IntVarP(&opts.Repetitions, "reps", "n", config.DefaultRepetitions, "integrations per form")
	cmd.Flags().StringVar(&opts.Library, "lib", config.DefaultLibrary, "path to the native integrand library")
	cmd.Flags().StringVar(&opts.Method, "method", quadrature.MethodAdaptive, "integration method (adaptive|legendre)")
	cmd.Flags().BoolVar(&opts.Sample, "sample", false, "time every integration and report percentiles")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	return cmd
}

// loadSuite reads the suite file, or the built-in suite when path is empty,
// and applies flag overrides.
func loadSuite(path string, opts *RunOptions, cmd *cobra.Command) (*config.Suite, error) {
	suite := config.Default()
	if path != "" {
		var err error
		suite, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("form") {
		suite.Forms = opts.Forms
	}
	if flags.Changed("reps") {
		suite.Repetitions = opts.Repetitions
	}
	if flags.Changed("lib") {
		suite.Library = opts.Library
	}
	if flags.Changed("method") {
		suite.Method = opts.Method
	}
	if flags.Changed("sample") {
		suite.Sample = opts.Sample
	}
	return suite, nil
}

func runBenchmark(opts *RunOptions, suitePath string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	suite, err := loadSuite(suitePath, opts, cmd)
	if err != nil {
		var ce *config.ConfigError
		switch {
		case errors.As(err, &ce):
			return formatter.Fail(ExitFailure, ErrCodeInvalidSuite, "invalid suite", err)
		case errors.Is(err, fs.ErrNotExist):
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "suite file not found", err)
		default:
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to load suite", err)
		}
	}

	formList, err := suite.FormList()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "invalid form", err)
	}
	if len(formList) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "no integrand forms selected", nil)
	}
	if suite.Repetitions < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "invalid repetitions",
			fmt.Errorf("%w: got %d", harness.ErrInvalidRepetitions, suite.Repetitions))
	}
	integrator, err := quadrature.New(suite.Method)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "invalid method", err)
	}
	fingerprint, err := suite.Fingerprint()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to fingerprint suite", err)
	}

	lib, bindings, err := resolveForms(formList, suite.Params, suite.Library, logger)
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

	clock := opts.Clock
	if clock == nil {
		clock = harness.SystemClock{}
	}

	var observers harness.Observers

	var recorder *metrics.Recorder
	if opts.MetricsFile != "" {
		recorder = metrics.NewRecorder()
		observers = append(observers, recorder)
	}

	report := RunReport{
		Suite:       suite.Name,
		Fingerprint: fingerprint,
		Method:      suite.Method,
		Repetitions: suite.Repetitions,
		Reference:   suite.Reference,
		Results:     make([]MeasurementReport, 0, len(bindings)),
	}

	var history *store.Recorder
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		ids := opts.IDGenerator
		if ids == nil {
			ids = store.UUIDv7Generator{}
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		run := store.Run{
			ID:          ids.Generate(),
			Suite:       suite.Name,
			Fingerprint: fingerprint,
			Method:      suite.Method,
			Repetitions: suite.Repetitions,
			Library:     libraryPath(lib),
			StartedAt:   clock.Now(),
		}
		if err := st.WriteRun(ctx, run); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to record run", err)
		}
		report.RunID = run.ID
		history = st.NewRecorder(ctx, run.ID)
		observers = append(observers, history)
	}

	timer := &harness.Timer{
		Integrator: integrator,
		Method:     suite.Method,
		Clock:      clock,
		Observer:   observers,
		Logger:     logger,
	}

	logger.Info("benchmark starting",
		"suite", suite.Name,
		"forms", suite.Forms,
		"method", suite.Method,
		"repetitions", suite.Repetitions,
	)

	w := cmd.OutOrStdout()
	for _, b := range bindings {
		m, err := timer.Time(harness.Batch{
			Form:        b.Form,
			Integrand:   b.Integrand,
			Repetitions: suite.Repetitions,
			Sample:      suite.Sample,
		})
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeIntegration, "integration failed", err)
		}

		if offReference(m.Result.Estimate, suite.Reference, suite.Tolerance) {
			logger.Warn("estimate outside reference tolerance",
				"form", m.Form,
				"estimate", m.Result.Estimate,
				"reference", suite.Reference,
				"tolerance", suite.Tolerance,
			)
		}

		report.Results = append(report.Results, newMeasurementReport(m))
		if opts.Format != "json" {
			fmt.Fprintln(w, formatMeasurement(m))
		}
	}

	if history != nil {
		if err := history.Err(); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to record measurements", err)
		}
	}
	if recorder != nil {
		if err := recorder.WriteTextfile(opts.MetricsFile); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to write metrics", err)
		}
		logger.Debug("metrics written", "path", opts.MetricsFile)
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	return nil
}

func libraryPath(lib *ffi.Library) string {
	if lib == nil {
		return ""
	}
	return lib.Path()
}
