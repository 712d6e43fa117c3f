// Package forms maps integrand form names to callable integrands.
package forms

import (
	"errors"
	"fmt"

	"github.com/roach88/quadbench/internal/ffi"
	"github.com/roach88/quadbench/internal/integrand"
)

// ErrNoLibrary is returned when the shared form is requested but no native
// library was loaded.
var ErrNoLibrary = errors.New("shared form requires a native library (--lib)")

// Resolver binds forms to integrands. It is built once at startup and
// never mutated.
type Resolver struct {
	shared      ffi.Routines
	compiled    ffi.Routines
	compiledErr error
}

// New returns a Resolver. lib may be nil when the shared form is not needed.
func New(lib *ffi.Library) *Resolver {
	r := &Resolver{}
	if lib != nil {
		r.shared = lib
	}

	compiled, err := ffi.Builtin()
	if err != nil {
		r.compiledErr = err
	} else {
		r.compiled = compiled
	}
	return r
}

// Resolve implements harness.Resolver.
func (r *Resolver) Resolve(form integrand.Form, params *integrand.Params) (integrand.Func, error) {
	switch form {
	case integrand.FormGo:
		if params != nil {
			return integrand.CosPower(*params), nil
		}
		return integrand.CosOverCube, nil
	case integrand.FormCgo:
		if r.compiledErr != nil {
			return nil, fmt.Errorf("form %s: %w", form, r.compiledErr)
		}
		return bind(form, r.compiled, params)
	case integrand.FormShared:
		if r.shared == nil {
			return nil, fmt.Errorf("form %s: %w", form, ErrNoLibrary)
		}
		return bind(form, r.shared, params)
	default:
		return nil, fmt.Errorf("unknown integrand form %q", form)
	}
}

func bind(form integrand.Form, routines ffi.Routines, params *integrand.Params) (integrand.Func, error) {
	if params == nil {
		return routines.Integrand(), nil
	}
	f, err := routines.Parametric(*params)
	if err != nil {
		return nil, fmt.Errorf("form %s: %w", form, err)
	}
	return f, nil
}

// Binding is a resolved form.
type Binding struct {
	Form      integrand.Form
	Integrand integrand.Func
}

// BindAll resolves every form up front so a missing library is reported
// before anything is timed. Duplicate forms are bound once.
func (r *Resolver) BindAll(forms []integrand.Form, params *integrand.Params) ([]Binding, error) {
	seen := make(map[integrand.Form]bool, len(forms))
	bindings := make([]Binding, 0, len(forms))
	for _, form := range forms {
		if seen[form] {
			continue
		}
		seen[form] = true

		f, err := r.Resolve(form, params)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Form: form, Integrand: f})
	}
	return bindings, nil
}

// NeedsLibrary reports whether any of forms loads the native library.
func NeedsLibrary(forms []integrand.Form) bool {
	for _, f := range forms {
		if f == integrand.FormShared {
			return true
		}
	}
	return false
}
