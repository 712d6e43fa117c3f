//go:build cgo

package ffi

/*
#cgo LDFLAGS: -lm
#include <math.h>

static double builtin_integrand(int n, double x) {
	(void)n;
	return cos(x) / (x * x * x);
}

static double builtin_integrand2(int n, double *args) {
	if (n < 3) {
		return NAN;
	}
	return cos(args[1] * args[0]) / pow(args[0], args[2]);
}
*/
import "C"

import "github.com/roach88/quadbench/internal/integrand"

// Compiled holds the integrand routines compiled into the binary.
type Compiled struct{}

var _ Routines = Compiled{}

// Builtin returns the compiled-in routines.
func Builtin() (Compiled, error) {
	return Compiled{}, nil
}

// Integrand implements Routines.
func (Compiled) Integrand() integrand.Func {
	return func(x float64) float64 {
		return float64(C.builtin_integrand(0, C.double(x)))
	}
}

// Parametric implements Routines.
func (Compiled) Parametric(p integrand.Params) (integrand.Func, error) {
	args := [3]C.double{0, C.double(p.A), C.double(p.B)}
	return func(x float64) float64 {
		args[0] = C.double(x)
		return float64(C.builtin_integrand2(3, &args[0]))
	}, nil
}
