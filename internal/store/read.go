package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/quadbench/internal/harness"
	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
)

// Record is a stored measurement.
type Record struct {
	RunID string `json:"run_id"`
	Seq   int    `json:"seq"`
	harness.Measurement
}

// ListRuns returns runs newest first. An empty suite lists every run.
//
// Returns an empty slice (not nil) when no runs match.
func (s *Store) ListRuns(ctx context.Context, suite string) ([]Run, error) {
	query := `
		SELECT id, suite, fingerprint, method, repetitions, library, started_at
		FROM runs
	`
	var args []any
	if suite != "" {
		query += " WHERE suite = ?"
		args = append(args, suite)
	}
	query += " ORDER BY started_at DESC, id COLLATE BINARY DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run       Run
			startedAt string
		)
		if err := rows.Scan(&run.ID, &run.Suite, &run.Fingerprint, &run.Method,
			&run.Repetitions, &run.Library, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %s: parse started_at: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadMeasurements returns the measurements of runID in seq order.
//
// Returns an empty slice (not nil) when the run has none.
func (s *Store) ReadMeasurements(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.seq, m.form, m.repetitions, m.estimate, m.abs_err, m.evaluations, m.intervals,
		       m.elapsed_ns, m.summary, r.method
		FROM measurements m
		JOIN runs r ON m.run_id = r.id
		WHERE m.run_id = ?
		ORDER BY m.seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec := Record{RunID: runID}
		var (
			form      string
			result    quadrature.Result
			elapsedNS int64
			summary   sql.NullString
		)
		if err := rows.Scan(&rec.Seq, &form, &rec.Repetitions, &result.Estimate, &result.AbsErr,
			&result.Evaluations, &result.Intervals, &elapsedNS, &summary,
			&rec.Method); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}

		rec.Form = integrand.Form(form)
		rec.Result = result
		rec.Elapsed = time.Duration(elapsedNS)
		if summary.Valid {
			var sum harness.Summary
			if err := json.Unmarshal([]byte(summary.String), &sum); err != nil {
				return nil, fmt.Errorf("measurement %s/%d: unmarshal summary: %w", runID, rec.Seq, err)
			}
			rec.Summary = &sum
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurements: %w", err)
	}
	return records, nil
}
