package harness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
	"github.com/roach88/quadbench/internal/testutil"
)

type recordingObserver struct {
	batches []*Measurement
}

func (o *recordingObserver) ObserveBatch(m *Measurement) {
	o.batches = append(o.batches, m)
}

// countingIntegrator returns a fixed result and fails on call failAt.
type countingIntegrator struct {
	calls  int
	failAt int
	clock  *testutil.ManualClock
}

func (c *countingIntegrator) Integrate(f integrand.Func, a, b float64) (quadrature.Result, error) {
	c.calls++
	if c.clock != nil {
		c.clock.Advance(time.Millisecond)
	}
	if c.calls == c.failAt {
		return quadrature.Result{}, quadrature.ErrNoConvergence
	}
	return quadrature.Result{Estimate: float64(c.calls), Evaluations: 21, Intervals: 1}, nil
}

func TestTimer_RejectsInvalidRepetitions(t *testing.T) {
	timer := NewTimer(quadrature.NewAdaptive())

	for _, n := range []int{0, -1} {
		_, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: n})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRepetitions)
	}
}

func TestTimer_RequiresIntegrand(t *testing.T) {
	timer := NewTimer(quadrature.NewAdaptive())
	_, err := timer.Time(Batch{Form: integrand.FormShared, Repetitions: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no integrand bound")
}

func TestTimer_KeepsOnlyLastResult(t *testing.T) {
	ci := &countingIntegrator{}
	timer := NewTimer(ci)

	m, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, ci.calls)
	assert.Equal(t, 5.0, m.Result.Estimate)
	assert.Equal(t, 5, m.Repetitions)
}

func TestTimer_ErrorAbortsBatch(t *testing.T) {
	ci := &countingIntegrator{failAt: 3}
	obs := &recordingObserver{}
	timer := NewTimer(ci)
	timer.Observer = obs

	m, err := timer.Time(Batch{Form: integrand.FormCgo, Integrand: integrand.CosOverCube, Repetitions: 10})
	require.Error(t, err)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, quadrature.ErrNoConvergence)
	assert.Contains(t, err.Error(), "form cgo: repetition 3 of 10")
	assert.Equal(t, 3, ci.calls)
	assert.Empty(t, obs.batches)
}

func TestTimer_ElapsedFromTwoReadings(t *testing.T) {
	clock := testutil.NewManualClock()
	timer := NewTimer(&countingIntegrator{clock: clock})
	timer.Clock = clock

	m, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 7})
	require.NoError(t, err)
	assert.Equal(t, 7*time.Millisecond, m.Elapsed)
	assert.Equal(t, time.Millisecond, m.PerCall())
	assert.Nil(t, m.Summary)
}

func TestTimer_ElapsedNonDecreasingInRepetitions(t *testing.T) {
	clock := testutil.NewManualClock()
	timer := NewTimer(quadrature.NewAdaptive())
	timer.Clock = clock

	f := func(x float64) float64 {
		clock.Advance(time.Nanosecond)
		return integrand.CosOverCube(x)
	}

	var previous time.Duration
	for _, n := range []int{1, 2, 5, 10, 50} {
		m, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: f, Repetitions: n})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m.Elapsed, previous, "n=%d", n)
		previous = m.Elapsed
	}
}

func TestTimer_SystemClockMonotone(t *testing.T) {
	timer := NewTimer(quadrature.NewAdaptive())

	small, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, small.Elapsed, time.Duration(0))
}

func TestTimer_IdenticalRunsIdenticalEstimates(t *testing.T) {
	timer := NewTimer(quadrature.NewAdaptive())
	b := Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 3}

	first, err := timer.Time(b)
	require.NoError(t, err)
	second, err := timer.Time(b)
	require.NoError(t, err)

	assert.Equal(t, first.Result, second.Result)
}

func TestTimer_Sample(t *testing.T) {
	clock := testutil.NewManualClock()
	timer := NewTimer(&countingIntegrator{clock: clock})
	timer.Clock = clock

	m, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 4, Sample: true})
	require.NoError(t, err)
	require.NotNil(t, m.Summary)
	assert.Equal(t, 4, m.Summary.Samples)
	assert.Equal(t, time.Millisecond, m.Summary.Mean)
	assert.Equal(t, time.Duration(0), m.Summary.StdDev)
	assert.Equal(t, time.Millisecond, m.Summary.P99)
}

func TestTimer_ObserverSeesEveryBatch(t *testing.T) {
	obs := &recordingObserver{}
	timer := NewTimer(quadrature.NewAdaptive())
	timer.Method = quadrature.MethodAdaptive
	timer.Observer = obs

	for i := 0; i < 3; i++ {
		_, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 1})
		require.NoError(t, err)
	}
	require.Len(t, obs.batches, 3)
	assert.Equal(t, quadrature.MethodAdaptive, obs.batches[0].Method)
}

func TestTimer_NoIntegrator(t *testing.T) {
	timer := &Timer{}
	_, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 1})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidRepetitions))
}

func TestMeasurement_PerCallZeroRepetitions(t *testing.T) {
	assert.Equal(t, time.Duration(0), (&Measurement{Elapsed: time.Second}).PerCall())
}

func BenchmarkTimer_GoForm(b *testing.B) {
	timer := NewTimer(quadrature.NewAdaptive())
	batch := Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 1}
	for i := 0; i < b.N; i++ {
		if _, err := timer.Time(batch); err != nil {
			b.Fatal(err)
		}
	}
}

func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	timer := NewTimer(quadrature.NewAdaptive())
	timer.Observer = Observers{a, nil, b}

	_, err := timer.Time(Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 1})
	require.NoError(t, err)
	assert.Len(t, a.batches, 1)
	assert.Len(t, b.batches, 1)
	assert.Same(t, a.batches[0], b.batches[0])
}
