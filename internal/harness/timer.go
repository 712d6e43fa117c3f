package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
)

// ErrInvalidRepetitions is returned for batches with fewer than one repetition.
var ErrInvalidRepetitions = errors.New("repetitions must be at least 1")

// Clock supplies wall-clock readings to the Timer.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real clock. time.Time carries a monotonic reading,
// so differences are unaffected by wall-clock adjustments.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Observer receives every completed measurement.
type Observer interface {
	ObserveBatch(m *Measurement)
}

// Observers fans a measurement out to several observers in order.
type Observers []Observer

// ObserveBatch implements Observer.
func (obs Observers) ObserveBatch(m *Measurement) {
	for _, o := range obs {
		if o != nil {
			o.ObserveBatch(m)
		}
	}
}

// Batch describes one timed run of repeated integrations.
type Batch struct {
	Form        integrand.Form
	Integrand   integrand.Func
	Repetitions int

	// Sample additionally times each integration so a Summary can be
	// reported. The extra clock readings are included in Elapsed.
	Sample bool
}

// Measurement is the outcome of a Batch.
type Measurement struct {
	Form        integrand.Form    `json:"form"`
	Method      string            `json:"method,omitempty"`
	Repetitions int               `json:"repetitions"`
	Result      quadrature.Result `json:"result"` // last integration only
	Elapsed     time.Duration     `json:"elapsed_ns"`
	Summary     *Summary          `json:"summary,omitempty"`
}

// PerCall returns the mean time of one integration.
func (m *Measurement) PerCall() time.Duration {
	if m.Repetitions == 0 {
		return 0
	}
	return m.Elapsed / time.Duration(m.Repetitions)
}

// Timer runs batches. The zero value is not usable; see NewTimer.
type Timer struct {
	Integrator quadrature.Integrator
	Method     string // reported in measurements
	Clock      Clock
	Observer   Observer // optional
	Logger     *slog.Logger
}

// NewTimer returns a Timer reading the system clock and logging nothing.
func NewTimer(integrator quadrature.Integrator) *Timer {
	return &Timer{
		Integrator: integrator,
		Clock:      SystemClock{},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Time integrates b.Integrand over [integrand.Lower, integrand.Upper]
// b.Repetitions times and measures the elapsed wall-clock time.
func (t *Timer) Time(b Batch) (*Measurement, error) {
	if b.Repetitions < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRepetitions, b.Repetitions)
	}
	if b.Integrand == nil {
		return nil, fmt.Errorf("form %s: no integrand bound", b.Form)
	}
	if t.Integrator == nil {
		return nil, errors.New("timer has no integrator")
	}

	clock := t.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	logger := t.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var samples []float64
	if b.Sample {
		samples = make([]float64, 0, b.Repetitions)
	}

	logger.Debug("batch starting", "form", b.Form, "method", t.Method, "repetitions", b.Repetitions)

	var last quadrature.Result
	start := clock.Now()
	for i := 0; i < b.Repetitions; i++ {
		var callStart time.Time
		if b.Sample {
			callStart = clock.Now()
		}

		r, err := t.Integrator.Integrate(b.Integrand, integrand.Lower, integrand.Upper)
		if err != nil {
			return nil, fmt.Errorf("form %s: repetition %d of %d: %w", b.Form, i+1, b.Repetitions, err)
		}

		if b.Sample {
			samples = append(samples, clock.Now().Sub(callStart).Seconds())
		}
		last = r
	}
	elapsed := clock.Now().Sub(start)

	m := &Measurement{
		Form:        b.Form,
		Method:      t.Method,
		Repetitions: b.Repetitions,
		Result:      last,
		Elapsed:     elapsed,
	}
	if b.Sample {
		s := Summarize(samples)
		m.Summary = &s
	}

	logger.Debug("batch finished",
		"form", b.Form,
		"elapsed", elapsed,
		"per_call", m.PerCall(),
		"estimate", last.Estimate,
		"abs_err", last.AbsErr,
	)

	if t.Observer != nil {
		t.Observer.ObserveBatch(m)
	}
	return m, nil
}
