package quadrature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/roach88/quadbench/internal/integrand"
)

// DefaultLegendreNodes is the coarse node count used by NewLegendre.
const DefaultLegendreNodes = 21

// Legendre integrates with a fixed Gauss–Legendre rule at Nodes and
// 2·Nodes points. The fine estimate is returned; the absolute difference
// to the coarse one is the error bound.
type Legendre struct {
	Nodes int
}

// NewLegendre returns a Legendre integrator with DefaultLegendreNodes.
func NewLegendre() *Legendre {
	return &Legendre{Nodes: DefaultLegendreNodes}
}

// Integrate implements Integrator.
func (q *Legendre) Integrate(f integrand.Func, a, b float64) (Result, error) {
	if err := checkBounds(a, b); err != nil {
		return Result{}, err
	}
	if a == b {
		return Result{}, nil
	}
	if a > b {
		r, err := q.Integrate(f, b, a)
		r.Estimate = -r.Estimate
		return r, err
	}

	n := q.Nodes
	if n < 1 {
		n = DefaultLegendreNodes
	}

	coarse := quad.Fixed(f, a, b, n, quad.Legendre{}, 0)
	fine := quad.Fixed(f, a, b, 2*n, quad.Legendre{}, 0)

	r := Result{
		Estimate:    fine,
		AbsErr:      math.Abs(fine - coarse),
		Evaluations: 3 * n,
		Intervals:   1,
	}
	if !finite(r.Estimate, r.AbsErr) {
		return r, fmt.Errorf("%w on [%v, %v]", ErrNonFinite, a, b)
	}
	return r, nil
}
