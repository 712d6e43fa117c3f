//go:build darwin || freebsd || linux

package ffi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebitengine/purego"

	"github.com/roach88/quadbench/internal/integrand"
)

// Library is a loaded shared library with its integrand symbols bound.
// It is immutable after Open returns.
type Library struct {
	path   string
	handle uintptr

	integrand  func(n int32, x float64) float64
	parametric func(n int32, args *float64) float64
}

var _ Routines = (*Library)(nil)

// Open loads the shared library at path and binds SymbolIntegrand.
// A path with a separator must name an existing file; a bare name such as
// "libintegrand.so" is looked up on the dynamic loader's search path.
// SymbolParametric is bound when present; its absence only surfaces when
// Parametric is called.
func Open(path string) (*Library, error) {
	if strings.ContainsRune(path, filepath.Separator) {
		if _, err := os.Stat(path); err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	lib := &Library{path: path, handle: handle}
	if err := lib.bind(SymbolIntegrand, &lib.integrand); err != nil {
		_ = purego.Dlclose(handle)
		return nil, err
	}
	if err := lib.bind(SymbolParametric, &lib.parametric); err != nil {
		lib.parametric = nil
	}

	return lib, nil
}

// bind resolves symbol and registers it against the Go function pointed to
// by fptr. purego panics on signatures it cannot marshal; that panic is
// turned into a LoadError so mismatches surface here rather than mid-run.
func (l *Library) bind(symbol string, fptr any) (err error) {
	sym, err := purego.Dlsym(l.handle, symbol)
	if err != nil {
		return &LoadError{Path: l.path, Symbol: symbol, Err: err}
	}
	if sym == 0 {
		return &LoadError{Path: l.path, Symbol: symbol, Err: errors.New("symbol resolved to nil")}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &LoadError{Path: l.path, Symbol: symbol, Err: fmt.Errorf("signature rejected: %v", r)}
		}
	}()
	purego.RegisterFunc(fptr, sym)
	return nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Integrand implements Routines.
func (l *Library) Integrand() integrand.Func {
	fn := l.integrand
	return func(x float64) float64 {
		return fn(0, x)
	}
}

// Parametric implements Routines.
func (l *Library) Parametric(p integrand.Params) (integrand.Func, error) {
	if l.parametric == nil {
		return nil, &LoadError{Path: l.path, Symbol: SymbolParametric, Err: errors.New("symbol not exported")}
	}
	fn := l.parametric
	args := make([]float64, 3)
	args[1], args[2] = p.A, p.B
	return func(x float64) float64 {
		args[0] = x
		return fn(int32(len(args)), &args[0])
	}, nil
}

// Close unloads the library. Functions returned by Integrand and Parametric
// must not be called afterwards.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}
