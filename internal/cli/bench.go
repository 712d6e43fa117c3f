package cli

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/roach88/quadbench/internal/ffi"
	"github.com/roach88/quadbench/internal/forms"
	"github.com/roach88/quadbench/internal/harness"
	"github.com/roach88/quadbench/internal/integrand"
)

// MeasurementReport is the JSON and history view of one timed batch.
type MeasurementReport struct {
	Form           string           `json:"form"`
	Method         string           `json:"method"`
	Repetitions    int              `json:"repetitions"`
	Estimate       float64          `json:"estimate"`
	AbsErr         float64          `json:"abs_err"`
	Evaluations    int              `json:"evaluations"`
	Intervals      int              `json:"intervals"`
	ElapsedSeconds float64          `json:"elapsed_seconds"`
	PerCallSeconds float64          `json:"per_call_seconds"`
	Summary        *harness.Summary `json:"summary,omitempty"`
}

func newMeasurementReport(m *harness.Measurement) MeasurementReport {
	return MeasurementReport{
		Form:           string(m.Form),
		Method:         m.Method,
		Repetitions:    m.Repetitions,
		Estimate:       m.Result.Estimate,
		AbsErr:         m.Result.AbsErr,
		Evaluations:    m.Result.Evaluations,
		Intervals:      m.Result.Intervals,
		ElapsedSeconds: m.Elapsed.Seconds(),
		PerCallSeconds: m.PerCall().Seconds(),
		Summary:        m.Summary,
	}
}

// formatMeasurement renders one batch as a single text line.
func formatMeasurement(m *harness.Measurement) string {
	line := fmt.Sprintf("%-7s elapsed %.6fs  per call %-10v  estimate %.15g ± %.2g",
		m.Form, m.Elapsed.Seconds(), m.PerCall().Round(time.Nanosecond), m.Result.Estimate, m.Result.AbsErr)
	if s := m.Summary; s != nil {
		line += fmt.Sprintf("  p50 %v  p99 %v", s.P50, s.P99)
	}
	return line
}

// resolveForms loads the native library when a form needs it and binds
// every form. Nothing has been timed when this returns an error. The
// returned library is nil when no form needed it.
func resolveForms(formList []integrand.Form, params *integrand.Params, libPath string, logger *slog.Logger) (*ffi.Library, []forms.Binding, error) {
	var lib *ffi.Library
	if forms.NeedsLibrary(formList) {
		var err error
		lib, err = ffi.Open(libPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("native library loaded", "path", lib.Path())
	}

	bindings, err := forms.New(lib).BindAll(formList, params)
	if err != nil {
		if lib != nil {
			_ = lib.Close()
		}
		return nil, nil, err
	}
	return lib, bindings, nil
}

// offReference reports whether estimate deviates from the reference value
// by more than tolerance.
func offReference(estimate, reference, tolerance float64) bool {
	return !(math.Abs(estimate-reference) <= tolerance)
}
