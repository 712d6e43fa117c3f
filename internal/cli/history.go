package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/quadbench/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Suite    string
	Limit    int
}

// HistoryEntry is one recorded run with its measurements.
type HistoryEntry struct {
	store.Run
	Results []MeasurementReport `json:"results"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded benchmark runs",
		Long: `List runs recorded with "quadbench run --db", newest first.

Runs with the same fingerprint used the same method, repetition count,
forms and integrand, so their elapsed times are comparable.

Example:
  quadbench history --db history.db
  quadbench history --db history.db --suite nightly --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Suite, "suite", "", "only list runs of this suite")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum number of runs to list (0 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Opening would create an empty database; a typo should be an error.
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "database not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runs, err := st.ListRuns(ctx, opts.Suite)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}
	if opts.Limit > 0 && len(runs) > opts.Limit {
		runs = runs[:opts.Limit]
	}

	entries := make([]HistoryEntry, 0, len(runs))
	for _, run := range runs {
		records, err := st.ReadMeasurements(ctx, run.ID)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read measurements", err)
		}
		entry := HistoryEntry{Run: run, Results: make([]MeasurementReport, 0, len(records))}
		for i := range records {
			entry.Results = append(entry.Results, newMeasurementReport(&records[i].Measurement))
		}
		entries = append(entries, entry)
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s  suite %s  %s ×%d  fingerprint %.12s\n",
			e.Run.StartedAt.Format(time.RFC3339), e.Run.ID, e.Run.Suite, e.Run.Method, e.Run.Repetitions, e.Run.Fingerprint)
		for _, r := range e.Results {
			fmt.Fprintf(w, "  %-7s elapsed %.6fs  estimate %.15g ± %.2g\n", r.Form, r.ElapsedSeconds, r.Estimate, r.AbsErr)
		}
	}
	return nil
}
