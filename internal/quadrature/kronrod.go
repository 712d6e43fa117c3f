package quadrature

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/roach88/quadbench/internal/integrand"
)

// Defaults for Adaptive.
const (
	DefaultEpsAbs = 1.49e-8
	DefaultEpsRel = 1.49e-8
	DefaultLimit  = 50
)

const (
	epmach = 2.220446049250313e-16
	uflow  = 2.2250738585072014e-308
)

// Gauss–Kronrod 21-point abscissae and weights. xgk[1], xgk[3], ... are the
// 10-point Gauss abscissae; xgk[10] is the centre.
var (
	xgk = [11]float64{
		0.995657163025808080735527280689003,
		0.973906528517171720077964012084452,
		0.930157491355708226001207180059508,
		0.865063366688984510732096688423493,
		0.780817726586416897063717578345042,
		0.679409568299024406234327365114874,
		0.562757134668604683339000099272694,
		0.433395394129247190799265943165784,
		0.294392862701460198131126603103866,
		0.148874338981631210884826001129720,
		0,
	}
	wgk = [11]float64{
		0.011694638867371874278064396062192,
		0.032558162307964727478818972459390,
		0.054755896574351996031381300244580,
		0.075039674810919952767043140916190,
		0.093125454583697605535065465083366,
		0.109387158802297641899210590325805,
		0.123491976262065851077208067359261,
		0.134709217311473325928054001771707,
		0.142775938577060080797094273138717,
		0.147739104901338491374841515972068,
		0.149445554002916905664936468389821,
	}
	wg = [5]float64{
		0.066671344308688137593568809893332,
		0.149451349150580593145776339657697,
		0.219086362515982043995534934228163,
		0.269266719309996355091226921569469,
		0.295524224714752870173892994651338,
	}
)

// kronrodPoints is the number of integrand calls per rule application.
const kronrodPoints = 21

// segment is one subinterval with its local estimate.
type segment struct {
	a, b   float64
	result float64
	abserr float64
}

// kronrod21 applies the 21-point rule on [a, b].
func kronrod21(f integrand.Func, a, b float64) segment {
	centr := 0.5 * (a + b)
	hlgth := 0.5 * (b - a)
	dhlgth := math.Abs(hlgth)

	var fv1, fv2 [10]float64

	fc := f(centr)
	resg := 0.0
	resk := wgk[10] * fc
	resabs := math.Abs(resk)

	for j := 0; j < 5; j++ {
		jtw := 2*j + 1
		absc := hlgth * xgk[jtw]
		fval1 := f(centr - absc)
		fval2 := f(centr + absc)
		fv1[jtw], fv2[jtw] = fval1, fval2
		fsum := fval1 + fval2
		resg += wg[j] * fsum
		resk += wgk[jtw] * fsum
		resabs += wgk[jtw] * (math.Abs(fval1) + math.Abs(fval2))
	}
	for j := 0; j < 5; j++ {
		jtwm1 := 2 * j
		absc := hlgth * xgk[jtwm1]
		fval1 := f(centr - absc)
		fval2 := f(centr + absc)
		fv1[jtwm1], fv2[jtwm1] = fval1, fval2
		fsum := fval1 + fval2
		resk += wgk[jtwm1] * fsum
		resabs += wgk[jtwm1] * (math.Abs(fval1) + math.Abs(fval2))
	}

	reskh := resk * 0.5
	resasc := wgk[10] * math.Abs(fc-reskh)
	for j := 0; j < 10; j++ {
		resasc += wgk[j] * (math.Abs(fv1[j]-reskh) + math.Abs(fv2[j]-reskh))
	}

	result := resk * hlgth
	resabs *= dhlgth
	resasc *= dhlgth
	abserr := math.Abs((resk - resg) * hlgth)
	if resasc != 0 && abserr != 0 {
		abserr = resasc * math.Min(1, math.Pow(200*abserr/resasc, 1.5))
	}
	if resabs > uflow/(50*epmach) {
		abserr = math.Max(epmach*50*resabs, abserr)
	}

	return segment{a: a, b: b, result: result, abserr: abserr}
}

// segmentHeap orders segments by descending error.
type segmentHeap []segment

func (h segmentHeap) Len() int           { return len(h) }
func (h segmentHeap) Less(i, j int) bool { return h[i].abserr > h[j].abserr }
func (h segmentHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *segmentHeap) Push(x any)        { *h = append(*h, x.(segment)) }
func (h *segmentHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	*h = old[:n-1]
	return s
}

// Adaptive is a globally adaptive Gauss–Kronrod integrator. The subinterval
// with the largest error is bisected until the total error bound drops
// below max(EpsAbs, EpsRel·|estimate|) or Limit subintervals exist.
type Adaptive struct {
	EpsAbs float64
	EpsRel float64
	Limit  int
}

// NewAdaptive returns an Adaptive integrator with default tolerances.
func NewAdaptive() *Adaptive {
	return &Adaptive{EpsAbs: DefaultEpsAbs, EpsRel: DefaultEpsRel, Limit: DefaultLimit}
}

// Integrate implements Integrator. When the limit is reached the partial
// result is returned alongside an error wrapping ErrNoConvergence.
func (q *Adaptive) Integrate(f integrand.Func, a, b float64) (Result, error) {
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

	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	first := kronrod21(f, a, b)
	evals := kronrodPoints
	if !finite(first.result, first.abserr) {
		return Result{Evaluations: evals, Intervals: 1}, fmt.Errorf("%w on [%v, %v]", ErrNonFinite, a, b)
	}

	h := &segmentHeap{first}
	total, totalErr := first.result, first.abserr

	for {
		tol := math.Max(q.EpsAbs, q.EpsRel*math.Abs(total))
		if totalErr <= tol {
			return h.sum(evals), nil
		}
		if h.Len() >= limit {
			return h.sum(evals), fmt.Errorf("%w: error bound %.3g exceeds tolerance %.3g after %d subintervals",
				ErrNoConvergence, totalErr, tol, h.Len())
		}

		worst := heap.Pop(h).(segment)
		mid := 0.5 * (worst.a + worst.b)
		if !(worst.a < mid && mid < worst.b) {
			heap.Push(h, worst)
			return h.sum(evals), fmt.Errorf("%w: subinterval [%v, %v] cannot be bisected further",
				ErrNoConvergence, worst.a, worst.b)
		}

		left := kronrod21(f, worst.a, mid)
		right := kronrod21(f, mid, worst.b)
		evals += 2 * kronrodPoints
		if !finite(left.result, left.abserr, right.result, right.abserr) {
			heap.Push(h, worst)
			return h.sum(evals), fmt.Errorf("%w on [%v, %v]", ErrNonFinite, worst.a, worst.b)
		}

		heap.Push(h, left)
		heap.Push(h, right)
		total += left.result + right.result - worst.result
		totalErr += left.abserr + right.abserr - worst.abserr
	}
}

// sum totals the partition in heap order so repeated runs add the same
// terms in the same sequence.
func (h segmentHeap) sum(evals int) Result {
	r := Result{Evaluations: evals, Intervals: len(h)}
	for _, s := range h {
		r.Estimate += s.result
		r.AbsErr += s.abserr
	}
	return r
}
