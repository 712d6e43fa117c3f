// Package integrand defines the functions integrated by quadbench.
//
// Every integrand is a pure function of one real argument. The same
// mathematical function exists in several forms: written in Go (this
// package), compiled into the binary through cgo, and loaded from a shared
// library at runtime (see package ffi). All forms of one function must agree
// to within floating-point rounding.
//
// Integration always runs over the fixed interval [Lower, Upper] = [π, 2π],
// where every integrand here is finite.
package integrand
