//go:build !(darwin || freebsd || linux)

package ffi

import (
	"errors"
	"runtime"

	"github.com/roach88/quadbench/internal/integrand"
)

// Library is unavailable on this platform; Open always fails.
type Library struct {
	path string
}

var _ Routines = (*Library)(nil)

// Open reports that dynamic loading is unsupported on this platform.
func Open(path string) (*Library, error) {
	return nil, &LoadError{Path: path, Err: errors.New("dynamic loading unsupported on " + runtime.GOOS)}
}

func (l *Library) Path() string { return l.path }

func (l *Library) Integrand() integrand.Func { return nil }

func (l *Library) Parametric(integrand.Params) (integrand.Func, error) {
	return nil, &LoadError{Path: l.path, Symbol: SymbolParametric, Err: errors.New("unsupported platform")}
}

func (l *Library) Close() error { return nil }
