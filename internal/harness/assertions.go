package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/quadbench/internal/integrand"
)

// Check names for expect clause fields.
const (
	CheckEstimate  = "expect.estimate"
	CheckMaxAbsErr = "expect.max_abs_err"
)

// defaultPoints are the abscissae compared by pointwise_agrees.
var defaultPoints = []float64{integrand.Lower, 1.5 * math.Pi, integrand.Upper}

// AssertionError is returned when an expectation or assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext carries what assertions need beyond the measurement.
type AssertionContext struct {
	Resolver Resolver
	Timer    *Timer
	Scenario *Scenario
}

// CheckExpect evaluates the expect clause against m.
func CheckExpect(expect *ExpectClause, m *Measurement, result *Result) {
	if expect == nil {
		return
	}

	if expect.Estimate != nil {
		tol := expect.Tolerance
		if tol == 0 {
			tol = DefaultTolerance
		}
		var err error
		if diff := math.Abs(m.Result.Estimate - *expect.Estimate); !(diff <= tol) {
			err = &AssertionError{
				Type:     CheckEstimate,
				Expected: fmt.Sprintf("%.10g ± %g", *expect.Estimate, tol),
				Actual:   fmt.Sprintf("%.15g (off by %.3g)", m.Result.Estimate, diff),
			}
		}
		result.Record(CheckEstimate, err)
	}

	if expect.MaxAbsErr > 0 {
		var err error
		if !(m.Result.AbsErr <= expect.MaxAbsErr) {
			err = &AssertionError{
				Type:     CheckMaxAbsErr,
				Expected: fmt.Sprintf("error bound ≤ %g", expect.MaxAbsErr),
				Actual:   fmt.Sprintf("%.3g", m.Result.AbsErr),
			}
		}
		result.Record(CheckMaxAbsErr, err)
	}
}

// EvaluateAssertions runs every assertion and records the outcomes on result.
// An error is returned only when an assertion cannot be executed at all,
// for example because the other form cannot be resolved.
func EvaluateAssertions(assertions []Assertion, m *Measurement, actx *AssertionContext, result *Result) error {
	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertAgreesWith:
			err = assertAgreesWith(assertion, m, actx)
		case AssertPointwiseAgrees:
			err = assertPointwiseAgrees(assertion, m, actx)
		case AssertEvaluations:
			err = assertEvaluations(assertion, m)
		case AssertDeterministic:
			err = assertDeterministic(m, actx)
		default:
			return fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		var assertErr *AssertionError
		if err != nil && !asAssertionError(err, &assertErr) {
			return fmt.Errorf("assertion[%d] %s: %w", i, assertion.Type, err)
		}
		result.Record(assertion.Type, err)
	}
	return nil
}

func asAssertionError(err error, target **AssertionError) bool {
	ae, ok := err.(*AssertionError)
	if ok {
		*target = ae
	}
	return ok
}

func agreementTolerance(a Assertion) float64 {
	if a.Tolerance == 0 {
		return DefaultAgreementTolerance
	}
	return a.Tolerance
}

// assertAgreesWith integrates the other form once and compares estimates.
func assertAgreesWith(a Assertion, m *Measurement, actx *AssertionContext) error {
	other, err := actx.Resolver.Resolve(integrand.Form(a.Form), actx.Scenario.Params)
	if err != nil {
		return err
	}

	r, err := actx.Timer.Integrator.Integrate(other, integrand.Lower, integrand.Upper)
	if err != nil {
		return fmt.Errorf("form %s: %w", a.Form, err)
	}

	tol := agreementTolerance(a)
	if diff := math.Abs(r.Estimate - m.Result.Estimate); !(diff <= tol) {
		return &AssertionError{
			Type:     AssertAgreesWith,
			Expected: fmt.Sprintf("%s estimate within %g of %s estimate %.15g", a.Form, tol, m.Form, m.Result.Estimate),
			Actual:   fmt.Sprintf("%.15g (off by %.3g)", r.Estimate, diff),
		}
	}
	return nil
}

// assertPointwiseAgrees evaluates both forms directly at sample points.
func assertPointwiseAgrees(a Assertion, m *Measurement, actx *AssertionContext) error {
	self, err := actx.Resolver.Resolve(m.Form, actx.Scenario.Params)
	if err != nil {
		return err
	}
	other, err := actx.Resolver.Resolve(integrand.Form(a.Form), actx.Scenario.Params)
	if err != nil {
		return err
	}

	points := a.Points
	if len(points) == 0 {
		points = defaultPoints
	}
	tol := agreementTolerance(a)

	for _, x := range points {
		want, got := self(x), other(x)
		if diff := math.Abs(want - got); !(diff <= tol) {
			return &AssertionError{
				Type:     AssertPointwiseAgrees,
				Expected: fmt.Sprintf("%s(%v) within %g of %s(%v) = %.15g", a.Form, x, tol, m.Form, x, want),
				Actual:   fmt.Sprintf("%.15g (off by %.3g)", got, diff),
			}
		}
	}
	return nil
}

// assertEvaluations checks the integrand call count of the last integration.
func assertEvaluations(a Assertion, m *Measurement) error {
	if m.Result.Evaluations != a.Count {
		return &AssertionError{
			Type:     AssertEvaluations,
			Expected: fmt.Sprintf("%d integrand evaluations", a.Count),
			Actual:   fmt.Sprintf("%d", m.Result.Evaluations),
		}
	}
	return nil
}

// assertDeterministic repeats the batch and requires an identical estimate.
func assertDeterministic(m *Measurement, actx *AssertionContext) error {
	f, err := actx.Resolver.Resolve(m.Form, actx.Scenario.Params)
	if err != nil {
		return err
	}

	again, err := actx.Timer.Time(Batch{Form: m.Form, Integrand: f, Repetitions: m.Repetitions})
	if err != nil {
		return err
	}

	if again.Result.Estimate != m.Result.Estimate || again.Result.AbsErr != m.Result.AbsErr {
		return &AssertionError{
			Type:     AssertDeterministic,
			Expected: fmt.Sprintf("identical result %.17g ± %.3g", m.Result.Estimate, m.Result.AbsErr),
			Actual:   fmt.Sprintf("%.17g ± %.3g", again.Result.Estimate, again.Result.AbsErr),
		}
	}
	return nil
}
