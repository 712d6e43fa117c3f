package ffi

import "github.com/roach88/quadbench/internal/integrand"

// Exported symbol names in the native library.
const (
	SymbolIntegrand  = "integrand"
	SymbolParametric = "integrand2"
)

// Routines is a bound set of native integrands.
type Routines interface {
	// Integrand returns cos(x)/x³ evaluated natively.
	Integrand() integrand.Func

	// Parametric returns cos(a·x)/x^b evaluated natively.
	Parametric(p integrand.Params) (integrand.Func, error)
}
