package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quadbench/internal/config"
	"github.com/roach88/quadbench/internal/ffi"
	"github.com/roach88/quadbench/internal/forms"
	"github.com/roach88/quadbench/internal/harness"
	"github.com/roach88/quadbench/internal/integrand"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update  bool   // regenerate golden files
	Filter  string // scenario filter (glob pattern)
	Library string
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name        string   `json:"name"`
	Pass        bool     `json:"pass"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run benchmark scenarios",
		Long: `Run YAML benchmark scenarios and compare their timing-free snapshots
with golden files in <scenarios-dir>/golden.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, native library not loadable, etc.)

Examples:
  quadbench test ./scenarios
  quadbench test ./scenarios --filter "cgo-*"
  quadbench test ./scenarios --update
  quadbench test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Library, "lib", config.DefaultLibrary, "path to the native integrand library")

	return cmd
}

// loadedScenario pairs a scenario file with its parse outcome.
type loadedScenario struct {
	file     string
	scenario *harness.Scenario
	err      error
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	loaded := make([]loadedScenario, 0, len(scenarioFiles))
	needsLibrary := false
	for _, file := range scenarioFiles {
		scenario, err := harness.LoadScenario(file)
		loaded = append(loaded, loadedScenario{file: file, scenario: scenario, err: err})
		if err == nil && scenarioNeedsLibrary(scenario) {
			needsLibrary = true
		}
	}

	// The library is loaded once, before any scenario is timed.
	var lib *ffi.Library
	if needsLibrary {
		lib, err = ffi.Open(opts.Library)
		if err != nil {
			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
			return formatter.Fail(ExitCommandError, ErrCodeLibrary, "failed to load native library", err)
		}
		defer lib.Close()
	}
	resolver := forms.New(lib)

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(loaded)),
		Total:     len(loaded),
	}

	for _, ls := range loaded {
		scenResult := runScenario(ls, resolver, opts, cmd, logger)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}

	return outputTestText(cmd, result)
}

// scenarioNeedsLibrary reports whether the scenario or any of its
// assertions uses the shared form.
func scenarioNeedsLibrary(s *harness.Scenario) bool {
	if s.Form == string(integrand.FormShared) {
		return true
	}
	for _, a := range s.Assertions {
		if a.Form == string(integrand.FormShared) {
			return true
		}
	}
	return false
}

// findScenarioFiles lists the .yaml and .yml files under dir whose base
// name matches filter, in lexical order.
func findScenarioFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", filter, err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(ls loadedScenario, resolver harness.Resolver, opts *TestOptions, cmd *cobra.Command, logger *slog.Logger) ScenarioResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"

	fail := func(name string, errs ...string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	if ls.err != nil {
		return fail(filepath.Base(ls.file), fmt.Sprintf("failed to load scenario: %v", ls.err))
	}
	scenario := ls.scenario

	result, err := harness.Run(scenario, resolver)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution error: %v", err))
	}
	logger.Debug("scenario executed", "scenario", scenario.Name, "elapsed", result.Measurement.Elapsed)

	snap := harness.NewSnapshot(scenario.Name, result)
	snapshot, err := snap.JSON()
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("failed to build snapshot: %v", err))
	}
	fingerprint, err := snap.Fingerprint()
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("failed to fingerprint snapshot: %v", err))
	}

	goldenPath := goldenFilePath(ls.file)
	if opts.Update {
		if err := writeGoldenFile(goldenPath, snapshot); err != nil {
			return fail(scenario.Name, fmt.Sprintf("failed to update golden file: %v", err))
		}
	} else {
		golden, err := os.ReadFile(goldenPath)
		if err != nil {
			return fail(scenario.Name, fmt.Sprintf("golden comparison failed: %v (run with --update to create)", err))
		}
		if !bytes.Equal(golden, snapshot) {
			return fail(scenario.Name, "snapshot does not match golden file (run with --update to regenerate)")
		}
	}

	if !result.Pass {
		return fail(scenario.Name, result.Errors...)
	}

	if text {
		fmt.Fprintf(w, "✓ %s\n", scenario.Name)
	}
	return ScenarioResult{Name: scenario.Name, Pass: true, Fingerprint: fingerprint}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// writeGoldenFile writes data as the golden file, creating its directory.
func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    ErrCodeScenarioFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	return testFailure(result)
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return testFailure(result)
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}

// testFailure is the exit error for a run with failed scenarios, or nil.
func testFailure(result TestResult) error {
	if result.Failed == 0 {
		return nil
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
}
