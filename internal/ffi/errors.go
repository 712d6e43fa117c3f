package ffi

import (
	"errors"
	"fmt"
)

// ErrLoad is matched by every error that prevents a native routine from
// being bound.
var ErrLoad = errors.New("native routine load failed")

// ErrNoCgo is returned by Builtin when the binary was built without cgo.
var ErrNoCgo = errors.New("binary built without cgo: compiled-in integrand unavailable")

// LoadError describes a failure to load a library or bind one of its symbols.
type LoadError struct {
	Path   string // library path
	Symbol string // symbol being bound; empty if the library itself failed
	Err    error
}

func (e *LoadError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("load %s: bind %s: %v", e.Path, e.Symbol, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports ErrLoad as a match so callers can test the category with errors.Is.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}
