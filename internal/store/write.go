package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/quadbench/internal/harness"
)

// timeLayout stores timestamps as sortable UTC text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one benchmark invocation.
type Run struct {
	ID          string    `json:"id"`
	Suite       string    `json:"suite"`
	Fingerprint string    `json:"fingerprint"`
	Method      string    `json:"method"`
	Repetitions int       `json:"repetitions"`
	Library     string    `json:"library,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

// WriteRun inserts a run. Writing the same ID twice is a no-op.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, suite, fingerprint, method, repetitions, library, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Suite,
		run.Fingerprint,
		run.Method,
		run.Repetitions,
		run.Library,
		run.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteMeasurement stores m as the seq-th measurement of runID.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteMeasurement(ctx context.Context, runID string, seq int, m *harness.Measurement) error {
	var summary sql.NullString
	if m.Summary != nil {
		data, err := json.Marshal(m.Summary)
		if err != nil {
			return fmt.Errorf("write measurement: marshal summary: %w", err)
		}
		summary = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO measurements
		(run_id, seq, form, repetitions, estimate, abs_err, evaluations, intervals, elapsed_ns, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		runID,
		seq,
		string(m.Form),
		m.Repetitions,
		m.Result.Estimate,
		m.Result.AbsErr,
		m.Result.Evaluations,
		m.Result.Intervals,
		m.Elapsed.Nanoseconds(),
		summary,
	)
	if err != nil {
		return fmt.Errorf("write measurement: %w", err)
	}
	return nil
}

// Recorder writes every observed batch of one run. It implements
// harness.Observer; the first write error is kept and later batches are
// dropped.
type Recorder struct {
	store *Store
	ctx   context.Context
	runID string
	seq   int
	err   error
}

// NewRecorder returns a Recorder for a run already written with WriteRun.
func (s *Store) NewRecorder(ctx context.Context, runID string) *Recorder {
	return &Recorder{store: s, ctx: ctx, runID: runID}
}

// ObserveBatch implements harness.Observer.
func (r *Recorder) ObserveBatch(m *harness.Measurement) {
	if r.err != nil {
		return
	}
	r.seq++
	r.err = r.store.WriteMeasurement(r.ctx, r.runID, r.seq, m)
}

// Err returns the first write error.
func (r *Recorder) Err() error {
	return r.err
}
