package quadrature

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/quadbench/internal/integrand"
)

// Result is the outcome of one integration.
type Result struct {
	Estimate    float64 `json:"estimate"`
	AbsErr      float64 `json:"abs_err"`
	Evaluations int     `json:"evaluations"` // integrand calls made
	Intervals   int     `json:"intervals"`   // subintervals in the final partition
}

// Integrator computes definite integrals.
type Integrator interface {
	Integrate(f integrand.Func, a, b float64) (Result, error)
}

var (
	// ErrNoConvergence means the error bound could not be brought under the
	// requested tolerance.
	ErrNoConvergence = errors.New("integration did not converge")

	// ErrNonFinite means the integrand produced NaN or ±Inf, i.e. it was
	// evaluated outside its domain.
	ErrNonFinite = errors.New("integrand returned a non-finite value")

	// ErrInvalidBounds means a bound was NaN or infinite.
	ErrInvalidBounds = errors.New("invalid integration bounds")
)

// Method names accepted by New.
const (
	MethodAdaptive = "adaptive"
	MethodLegendre = "legendre"
)

// Methods lists every method name.
var Methods = []string{MethodAdaptive, MethodLegendre}

// New returns the integrator registered under method with default settings.
func New(method string) (Integrator, error) {
	switch method {
	case MethodAdaptive, "":
		return NewAdaptive(), nil
	case MethodLegendre:
		return NewLegendre(), nil
	default:
		return nil, fmt.Errorf("unknown integration method %q: must be one of %v", method, Methods)
	}
}

func checkBounds(a, b float64) error {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidBounds, a, b)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
