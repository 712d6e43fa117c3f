package integrand

import (
	"fmt"
	"math"
)

// Func is a real function of one real variable.
type Func func(x float64) float64

// Integration bounds. They never change between runs.
const (
	Lower = math.Pi
	Upper = 2 * math.Pi
)

// Reference is the published value of the integral of CosOverCube over
// [Lower, Upper], rounded to seven significant digits.
const Reference = -0.0152115

// Form names the realization an integrand is evaluated through.
type Form string

const (
	// FormGo evaluates the integrand in Go.
	FormGo Form = "go"
	// FormCgo calls the C integrand compiled into the binary.
	FormCgo Form = "cgo"
	// FormShared calls the C integrand in a dynamically loaded library.
	FormShared Form = "shared"
)

// Forms lists every known form in display order.
var Forms = []Form{FormGo, FormCgo, FormShared}

// ParseForm validates a form name.
func ParseForm(s string) (Form, error) {
	for _, f := range Forms {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown integrand form %q: must be one of %v", s, Forms)
}

// IsForeign reports whether the form crosses a foreign-function boundary.
func (f Form) IsForeign() bool {
	return f == FormCgo || f == FormShared
}

// CosOverCube returns cos(x)/x³. x must be non-zero.
func CosOverCube(x float64) float64 {
	return math.Cos(x) / (x * x * x)
}

// Params parameterizes CosPower.
type Params struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

// DefaultParams makes CosPower equal to CosOverCube.
var DefaultParams = Params{A: 1, B: 3}

// CosPower returns the integrand cos(A·x)/x^B.
func CosPower(p Params) Func {
	return func(x float64) float64 {
		return math.Cos(p.A*x) / math.Pow(x, p.B)
	}
}
