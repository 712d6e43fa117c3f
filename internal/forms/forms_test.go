package forms

import (
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadbench/internal/ffi"
	"github.com/roach88/quadbench/internal/harness"
	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/testutil"
)

var _ harness.Resolver = (*Resolver)(nil)

func TestResolve_GoForm(t *testing.T) {
	r := New(nil)

	f, err := r.Resolve(integrand.FormGo, nil)
	require.NoError(t, err)
	assert.Equal(t, integrand.CosOverCube(math.Pi), f(math.Pi))

	p, err := r.Resolve(integrand.FormGo, &integrand.Params{A: 2, B: 1})
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(2*4.0)/4.0, p(4.0), 1e-15)
}

func TestResolve_SharedWithoutLibrary(t *testing.T) {
	r := New(nil)

	f, err := r.Resolve(integrand.FormShared, nil)
	require.Error(t, err)
	assert.Nil(t, f)
	assert.ErrorIs(t, err, ErrNoLibrary)
}

func TestResolve_UnknownForm(t *testing.T) {
	_, err := New(nil).Resolve(integrand.Form("wasm"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown integrand form "wasm"`)
}

func TestResolve_CgoForm(t *testing.T) {
	r := New(nil)

	f, err := r.Resolve(integrand.FormCgo, nil)
	if _, builtinErr := ffi.Builtin(); builtinErr != nil {
		require.Error(t, err)
		assert.ErrorIs(t, err, ffi.ErrNoCgo)
		return
	}
	require.NoError(t, err)
	for _, x := range []float64{math.Pi, 1.5 * math.Pi, 2 * math.Pi} {
		assert.InDelta(t, integrand.CosOverCube(x), f(x), 1e-9)
	}
}

func TestResolve_SharedForm(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shared libraries are loaded with dlopen")
	}
	lib, err := ffi.Open(testutil.BuildIntegrandLibrary(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	r := New(lib)

	f, err := r.Resolve(integrand.FormShared, nil)
	require.NoError(t, err)
	for _, x := range []float64{math.Pi, 1.5 * math.Pi, 2 * math.Pi} {
		assert.InDelta(t, integrand.CosOverCube(x), f(x), 1e-9)
	}

	p, err := r.Resolve(integrand.FormShared, &integrand.DefaultParams)
	require.NoError(t, err)
	assert.InDelta(t, integrand.CosOverCube(4.0), p(4.0), 1e-15)
}

func TestBindAll(t *testing.T) {
	r := New(nil)

	bindings, err := r.BindAll([]integrand.Form{integrand.FormGo, integrand.FormGo}, nil)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, integrand.FormGo, bindings[0].Form)

	_, err = r.BindAll([]integrand.Form{integrand.FormGo, integrand.FormShared}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoLibrary)
}

func TestNeedsLibrary(t *testing.T) {
	assert.False(t, NeedsLibrary([]integrand.Form{integrand.FormGo, integrand.FormCgo}))
	assert.True(t, NeedsLibrary([]integrand.Form{integrand.FormGo, integrand.FormShared}))
	assert.False(t, NeedsLibrary(nil))
}

func TestResolverRunsScenario(t *testing.T) {
	scenario := &harness.Scenario{
		Name:        "forms_go",
		Description: "resolver drives the harness",
		Form:        "go",
		Repetitions: 2,
		Expect:      &harness.ExpectClause{Estimate: ptr(integrand.Reference)},
	}

	result, err := harness.Run(scenario, New(nil))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func ptr(v float64) *float64 { return &v }
