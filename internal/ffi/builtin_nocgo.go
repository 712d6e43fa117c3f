//go:build !cgo

package ffi

import "github.com/roach88/quadbench/internal/integrand"

// Compiled is empty in binaries built without cgo.
type Compiled struct{}

var _ Routines = Compiled{}

// Builtin always fails with ErrNoCgo.
func Builtin() (Compiled, error) {
	return Compiled{}, ErrNoCgo
}

func (Compiled) Integrand() integrand.Func { return nil }

func (Compiled) Parametric(integrand.Params) (integrand.Func, error) {
	return nil, ErrNoCgo
}
