// Package quadrature integrates real functions over finite intervals.
//
// Callers depend on the Integrator interface only: given an integrand and
// bounds it returns an estimate together with an absolute error bound, or an
// error when the requested accuracy cannot be met. Two implementations are
// provided:
//
//   - Adaptive: globally adaptive 21-point Gauss–Kronrod quadrature using the
//     QUADPACK error heuristics, with defaults matching the common
//     quad(f, a, b) entry points (absolute and relative tolerance 1.49e-8,
//     at most 50 subintervals).
//   - Legendre: a fixed Gauss–Legendre rule from gonum, evaluated at n and 2n
//     nodes; the difference of the two is reported as the error bound.
//
// Both are deterministic: the same integrand and bounds always produce
// bit-identical results. Neither is safe for concurrent use with a
// non-reentrant integrand.
package quadrature
