package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadbench/internal/ffi"
	"github.com/roach88/quadbench/internal/testutil"
)

func runCompareCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	opts := &CompareOptions{
		RootOptions: &RootOptions{Format: format},
		Clock:       testutil.NewManualClock(),
	}
	out, _, err := execute(t, newCompareCommand(opts), args...)
	return out, err
}

func TestCompareCommand_Shared(t *testing.T) {
	lib := testutil.BuildIntegrandLibrary(t)

	out, err := runCompareCommand(t, "text", "--reps", "5", "--lib", lib)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "go "))
	assert.True(t, strings.HasPrefix(lines[1], "shared "))
	assert.True(t, strings.HasPrefix(lines[2], "difference "))
	assert.Equal(t, "time ratio shared/go 0.000", lines[3], "manual clock never advances")
}

func TestCompareCommand_JSON(t *testing.T) {
	lib := testutil.BuildIntegrandLibrary(t)

	out, err := runCompareCommand(t, "json", "--reps", "2", "--lib", lib)
	require.NoError(t, err)

	status, report := decodeResponse[CompareReport](t, out)
	assert.Equal(t, "ok", status)
	assert.True(t, report.Agree)
	assert.Equal(t, "go", report.Host.Form)
	assert.Equal(t, "shared", report.Foreign.Form)
	assert.LessOrEqual(t, report.Difference, 1e-9)
	assert.Equal(t, 2, report.Foreign.Repetitions)
}

func TestCompareCommand_Cgo(t *testing.T) {
	if _, err := ffi.Builtin(); err != nil {
		t.Skip("built without cgo")
	}

	out, err := runCompareCommand(t, "json", "--foreign", "cgo", "--reps", "2", "--lib", "/nonexistent")
	require.NoError(t, err, "cgo comparison never loads the library")

	_, report := decodeResponse[CompareReport](t, out)
	assert.Equal(t, "cgo", report.Foreign.Form)
	assert.True(t, report.Agree)
}

func TestCompareCommand_MissingLibrary(t *testing.T) {
	out, err := runCompareCommand(t, "text", "--lib", filepath.Join(t.TempDir(), "absent.so"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, out)
}

func TestCompareCommand_InvalidForeign(t *testing.T) {
	for _, foreign := range []string{"go", "fortran"} {
		_, err := runCompareCommand(t, "text", "--foreign", foreign)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	}
}

func TestCompareCommand_InvalidReps(t *testing.T) {
	_, err := runCompareCommand(t, "text", "--reps", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
