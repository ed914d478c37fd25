package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docq/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional; latest run when empty
	All      bool
}

// ReplayQueryResult holds the replay result for a single compilation.
type ReplayQueryResult struct {
	Seq          int64  `json:"seq"`
	Name         string `json:"name"`
	RecordedHash string `json:"recorded_hash,omitempty"`
	ReplayedHash string `json:"replayed_hash,omitempty"`
	RecordedKind string `json:"recorded_error_kind,omitempty"`
	ReplayedKind string `json:"replayed_error_kind,omitempty"`
	Match        bool   `json:"match"`
}

// ReplayRunResult holds the replay result for one run.
type ReplayRunResult struct {
	RunID           string              `json:"run_id"`
	SourceFile      string              `json:"source_file"`
	CompilerVersion string              `json:"compiler_version"`
	VersionChanged  bool                `json:"version_changed"`
	Queries         []ReplayQueryResult `json:"queries"`
	Mismatches      int                 `json:"mismatches"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs          []ReplayRunResult `json:"runs"`
	Deterministic bool              `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Recompile recorded queries and verify determinism",
		Long: `Recompile the queries stored by 'docq record' and compare each output
hash (or error kind) with the recorded one.

Exit codes:
  0 - Every compilation replayed identically
  1 - One or more outputs changed
  2 - Command error (database not found, unknown run, etc.)

Examples:
  docq replay --db ./docq.db
  docq replay --db ./docq.db --run 0192f4c5-...
  docq replay --db ./docq.db --all --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run (default: latest)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "replay every recorded run")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()
	ctx := cmd.Context()

	if opts.Database == "" {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, "--db is required")
	}
	if opts.All && opts.RunID != "" {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "--run and --all are mutually exclusive")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, fmt.Sprintf("opening database: %v", err))
	}
	defer st.Close()

	runIDs, err := selectRuns(cmd, st, opts)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, fmt.Sprintf("listing runs: %v", err))
	}

	result := ReplayResult{Runs: make([]ReplayRunResult, 0, len(runIDs)), Deterministic: true}
	for _, id := range runIDs {
		report, err := st.Replay(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fail(formatter, ExitCommandError, ErrCodeRunNotFound, fmt.Sprintf("run not found: %s", id))
		}
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeDatabase, err.Error())
		}

		run := convertReport(report)
		logger.Debug("run replayed", "run_id", run.RunID, "mismatches", run.Mismatches)
		if run.Mismatches > 0 {
			result.Deterministic = false
		}
		result.Runs = append(result.Runs, run)
	}

	if err := outputReplay(formatter, result); err != nil {
		return err
	}
	if !result.Deterministic {
		return NewExitError(ExitFailure, "replay produced different outputs")
	}
	return nil
}

// selectRuns resolves the runs to replay. An empty database yields none.
func selectRuns(cmd *cobra.Command, st *store.Store, opts *ReplayOptions) ([]string, error) {
	if opts.RunID != "" {
		return []string{opts.RunID}, nil
	}

	if opts.All {
		runs, err := st.ListRuns(cmd.Context())
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(runs))
		for i, r := range runs {
			ids[i] = r.ID
		}
		return ids, nil
	}

	latest, err := st.LatestRun(cmd.Context())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []string{latest.ID}, nil
}

func convertReport(report *store.ReplayReport) ReplayRunResult {
	run := ReplayRunResult{
		RunID:           report.Run.ID,
		SourceFile:      report.Run.SourceFile,
		CompilerVersion: report.Run.CompilerVersion,
		VersionChanged:  report.VersionChanged,
		Queries:         make([]ReplayQueryResult, 0, len(report.Results)),
	}
	for _, r := range report.Results {
		run.Queries = append(run.Queries, ReplayQueryResult{
			Seq:          r.Recorded.Seq,
			Name:         r.Recorded.Name,
			RecordedHash: r.Recorded.OutputHash,
			ReplayedHash: r.OutputHash,
			RecordedKind: r.Recorded.ErrorKind,
			ReplayedKind: r.ErrorKind,
			Match:        r.Match,
		})
		if !r.Match {
			run.Mismatches++
		}
	}
	return run
}

func outputReplay(formatter *OutputFormatter, result ReplayResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	for _, run := range result.Runs {
		fmt.Fprintf(w, "Run %s (%s)\n", run.RunID, run.SourceFile)
		if run.VersionChanged {
			fmt.Fprintf(w, "  recorded by compiler %s\n", run.CompilerVersion)
		}
		for _, q := range run.Queries {
			mark := "✓"
			if !q.Match {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %3d %s\n", mark, q.Seq, q.Name)
		}
		fmt.Fprintln(w)
	}

	if result.Deterministic {
		fmt.Fprintln(w, "✓ All outputs replayed identically")
	} else {
		fmt.Fprintln(w, "✗ Replay produced different outputs")
	}
	return nil
}
