// Package harness times repeated integrations and runs benchmark scenarios.
//
// # Timing
//
// A Timer integrates one integrand form over [π, 2π] N times in a row,
// waiting for each integration to return before starting the next, and
// reports the wall-clock time of the whole batch:
//
//	timer := harness.NewTimer(quadrature.NewAdaptive())
//	m, err := timer.Time(harness.Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 100000})
//	fmt.Printf("%s: %v\n", m.Form, m.Elapsed)
//
// Only the result of the last integration is kept; results are never
// accumulated. Any integrator error aborts the batch and is returned.
//
// # Scenario Format
//
// Scenarios are YAML files checked by `quadbench test`:
//
//	name: cosine_cube_go
//	description: "Go integrand converges in one Kronrod step"
//	form: go
//	method: adaptive
//	repetitions: 10
//	params: { a: 1, b: 3 }
//	expect:
//	  estimate: -0.0152115
//	  tolerance: 1e-6
//	  max_abs_err: 1e-6
//	assertions:
//	  - type: agrees_with
//	    form: cgo
//	    tolerance: 1e-9
//	  - type: pointwise_agrees
//	    form: shared
//	    points: [3.141592653589793, 4.71238898038469, 6.283185307179586]
//	  - type: evaluations
//	    count: 21
//	  - type: deterministic
//
// # Deterministic Output
//
// Scenario results are snapshotted without timings so golden files are
// stable across machines. Estimates are written with twelve decimals.
package harness
