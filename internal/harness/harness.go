package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
)

// Options tune scenario execution. The zero value reads the system clock,
// observes nothing and discards logs.
type Options struct {
	Clock    Clock
	Observer Observer
	Logger   *slog.Logger
}

// Run executes a scenario with default options.
func Run(scenario *Scenario, resolver Resolver) (*Result, error) {
	return RunWithOptions(scenario, resolver, Options{})
}

// RunWithOptions executes a scenario and returns the result.
//
// The form is resolved before anything is timed, so a missing native
// library surfaces as an error rather than as a failed check. Expectation
// and assertion failures are reported in the Result; the returned error is
// reserved for scenarios that could not be executed.
func RunWithOptions(scenario *Scenario, resolver Resolver, opts Options) (*Result, error) {
	if resolver == nil {
		return nil, fmt.Errorf("scenario %s: no resolver", scenario.Name)
	}

	form, err := integrand.ParseForm(scenario.Form)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	f, err := resolver.Resolve(form, scenario.Params)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: resolve form: %w", scenario.Name, err)
	}

	integrator, err := quadrature.New(scenario.Method)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	method := scenario.Method
	if method == "" {
		method = quadrature.MethodAdaptive
	}

	timer := &Timer{
		Integrator: integrator,
		Method:     method,
		Clock:      opts.Clock,
		Observer:   opts.Observer,
		Logger:     logger,
	}

	m, err := timer.Time(Batch{Form: form, Integrand: f, Repetitions: scenario.Repetitions})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Measurement = m

	CheckExpect(scenario.Expect, m, result)

	actx := &AssertionContext{
		Resolver: resolver,
		Timer:    timer,
		Scenario: scenario,
	}
	if err := EvaluateAssertions(scenario.Assertions, m, actx, result); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"elapsed", m.Elapsed,
		"checks", len(result.Checks),
	)

	return result, nil
}
