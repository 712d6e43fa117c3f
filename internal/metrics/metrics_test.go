package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadbench/internal/harness"
	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
)

var _ harness.Observer = (*Recorder)(nil)

func measurement(form integrand.Form, reps int, elapsed time.Duration) *harness.Measurement {
	return &harness.Measurement{
		Form:        form,
		Method:      quadrature.MethodAdaptive,
		Repetitions: reps,
		Result:      quadrature.Result{Estimate: -0.0152115, Evaluations: 21, Intervals: 1},
		Elapsed:     elapsed,
	}
}

func TestRecorder_ObserveBatch(t *testing.T) {
	r := NewRecorder()

	r.ObserveBatch(measurement(integrand.FormGo, 100, 2*time.Second))
	r.ObserveBatch(measurement(integrand.FormGo, 50, time.Second))
	r.ObserveBatch(measurement(integrand.FormShared, 10, 100*time.Millisecond))

	assert.Equal(t, 2.0, promtest.ToFloat64(r.batches.WithLabelValues("go")))
	assert.Equal(t, 150.0, promtest.ToFloat64(r.integrations.WithLabelValues("go")))
	assert.Equal(t, 150.0*21, promtest.ToFloat64(r.evaluations.WithLabelValues("go")))
	assert.Equal(t, 1.0, promtest.ToFloat64(r.elapsedSeconds.WithLabelValues("go")))
	assert.Equal(t, 0.1, promtest.ToFloat64(r.elapsedSeconds.WithLabelValues("shared")))
	assert.Equal(t, -0.0152115, promtest.ToFloat64(r.estimate.WithLabelValues("shared")))

	assert.Equal(t, 2, promtest.CollectAndCount(r.callSeconds))
}

func TestRecorder_WithTimer(t *testing.T) {
	r := NewRecorder()
	timer := harness.NewTimer(quadrature.NewAdaptive())
	timer.Method = quadrature.MethodAdaptive
	timer.Observer = r

	_, err := timer.Time(harness.Batch{Form: integrand.FormGo, Integrand: integrand.CosOverCube, Repetitions: 4})
	require.NoError(t, err)

	assert.Equal(t, 4.0*21, promtest.ToFloat64(r.evaluations.WithLabelValues("go")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveBatch(measurement(integrand.FormCgo, 10, time.Second))

	path := filepath.Join(t.TempDir(), "quadbench.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `quadbench_batch_total{form="cgo"} 1`)
	assert.Contains(t, text, `quadbench_integration_total{form="cgo"} 10`)
	assert.Contains(t, text, `quadbench_integrand_evaluations_total{form="cgo"} 210`)
	assert.Contains(t, text, "# TYPE quadbench_integration_call_seconds histogram")

	expected := `
# HELP quadbench_batch_elapsed_seconds Wall-clock time of the latest batch
# TYPE quadbench_batch_elapsed_seconds gauge
quadbench_batch_elapsed_seconds{form="cgo"} 1
`
	require.NoError(t, promtest.GatherAndCompare(r.Registry(), strings.NewReader(expected), "quadbench_batch_elapsed_seconds"))
}

func TestRecorder_WriteTextfileBadPath(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics file")
}
