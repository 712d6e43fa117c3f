package ffi

import "math"

var samplePoints = []float64{math.Pi, 1.25 * math.Pi, 1.5 * math.Pi, 1.75 * math.Pi, 2 * math.Pi}

// sink keeps benchmark results alive.
var sink float64
