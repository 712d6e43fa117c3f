package harness

import (
	"github.com/roach88/quadbench/internal/integrand"
)

// Resolver binds an integrand form to a callable function. A nil params
// selects cos(x)/x³; otherwise the parametric integrand is bound.
type Resolver interface {
	Resolve(form integrand.Form, params *integrand.Params) (integrand.Func, error)
}

// Check records the outcome of one expectation or assertion.
type Check struct {
	Type string `json:"type"`
	Pass bool   `json:"pass"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expectation and assertion holds.
	Pass bool `json:"pass"`

	// Measurement is the timed batch.
	Measurement *Measurement `json:"measurement"`

	// Checks lists every evaluated expectation and assertion in order.
	Checks []Check `json:"checks"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Checks: []Check{},
		Errors: []string{},
	}
}

// Record appends a check, failing the result when err is non-nil.
func (r *Result) Record(checkType string, err error) {
	r.Checks = append(r.Checks, Check{Type: checkType, Pass: err == nil})
	if err != nil {
		r.AddError(err.Error())
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
