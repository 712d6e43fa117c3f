package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadbench/internal/harness"
	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
	"github.com/roach88/quadbench/internal/store"
)

// seedHistory writes two runs of different suites, one batch each.
func seedHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, suite := range []string{"default", "nightly"} {
		run := store.Run{
			ID:          suite + "-run",
			Suite:       suite,
			Fingerprint: strings.Repeat("ab", 32),
			Method:      quadrature.MethodAdaptive,
			Repetitions: 100,
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, st.WriteRun(ctx, run))
		require.NoError(t, st.WriteMeasurement(ctx, run.ID, 0, &harness.Measurement{
			Form:        integrand.FormGo,
			Repetitions: 100,
			Result:      quadrature.Result{Estimate: -0.0152115, AbsErr: 1e-17, Evaluations: 21, Intervals: 1},
			Elapsed:     250 * time.Millisecond,
		}))
	}
	return path
}

func TestHistoryCommand_Text(t *testing.T) {
	db := seedHistory(t)

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)

	nightly := strings.Index(out, "nightly-run")
	def := strings.Index(out, "default-run")
	require.NotEqual(t, -1, nightly)
	require.NotEqual(t, -1, def)
	assert.Less(t, nightly, def, "newest run first")
	assert.Contains(t, out, "fingerprint abababababab\n")
	assert.Contains(t, out, "elapsed 0.250000s")
}

func TestHistoryCommand_SuiteAndLimit(t *testing.T) {
	db := seedHistory(t)

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", db, "--suite", "default")
	require.NoError(t, err)
	_, entries := decodeResponse[[]HistoryEntry](t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "default-run", entries[0].ID)
	require.Len(t, entries[0].Results, 1)
	assert.Equal(t, 21, entries[0].Results[0].Evaluations)
	assert.Equal(t, quadrature.MethodAdaptive, entries[0].Results[0].Method)
	assert.InDelta(t, 0.0025, entries[0].Results[0].PerCallSeconds, 1e-12)

	out, _, err = execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", db, "--limit", "1")
	require.NoError(t, err)
	_, entries = decodeResponse[[]HistoryEntry](t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "nightly-run", entries[0].ID)
}

func TestHistoryCommand_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", path)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)

	out, _, err = execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", path)
	require.NoError(t, err)
	status, entries := decodeResponse[[]HistoryEntry](t, out)
	assert.Equal(t, "ok", status)
	assert.Empty(t, entries)
}

func TestHistoryCommand_DatabaseNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")

	_, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.NoFileExists(t, path)
}

func TestHistoryCommand_RequiresDatabase(t *testing.T) {
	_, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"db" not set`)
}
