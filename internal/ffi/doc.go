// Package ffi binds the native integrand routines.
//
// Two bridges exist:
//
//   - Open loads a shared library at runtime with purego (dlopen/dlsym) and
//     binds its symbols to statically declared Go function types. A missing
//     file, missing symbol or rejected signature is reported by Open, never
//     at call time.
//   - Builtin exposes the same C routines compiled into the binary with cgo.
//     It is only available when the binary is built with cgo enabled.
//
// The native calling convention is inherited from the integrator bindings
// the routines were written for:
//
//	double integrand(int n, double x);
//	double integrand2(int n, double *args);   // args = {x, a, b}
//
// The int parameter carries no meaning for integrand and is always passed
// as 0. For integrand2 it is the length of args.
//
// Bound routines are not safe for concurrent use. A Library is loaded once
// and passed explicitly to whatever needs it.
package ffi
