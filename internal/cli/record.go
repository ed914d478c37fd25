package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docq/internal/store"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string
}

// RecordedQuery summarizes one stored compilation.
type RecordedQuery struct {
	Seq        int64  `json:"seq"`
	Name       string `json:"name"`
	OutputHash string `json:"output_hash,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
}

// RecordResult is the output of the record command.
type RecordResult struct {
	RunID           string          `json:"run_id"`
	SourceFile      string          `json:"source_file"`
	CompilerVersion string          `json:"compiler_version"`
	Queries         []RecordedQuery `json:"queries"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <query-file>",
		Short: "Compile queries and store the outputs for replay",
		Long: `Compile every query of a file and store the canonical source, the
canonical output and its hash as one run in a SQLite database.

Queries the compiler rejects are stored with their error kind. Use
'docq replay' later to check that the compiler still produces the same
outputs.

Examples:
  docq record queries.yaml --db ./docq.db
  DOCQ_DB=./docq.db docq record queries.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")

	return cmd
}

func runRecord(opts *RecordOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// --db may come from the environment or config file, so it is checked
	// here rather than with MarkFlagRequired.
	if opts.Database == "" {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, "--db is required")
	}

	queries, err := LoadQueries(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, fmt.Sprintf("opening database: %v", err))
	}
	defer st.Close()

	recorder := store.NewRecorder(st, store.WithLogger(opts.logger()))
	run, comps, err := recorder.Record(cmd.Context(), path, queries)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, err.Error())
	}

	result := RecordResult{
		RunID:           run.ID,
		SourceFile:      run.SourceFile,
		CompilerVersion: run.CompilerVersion,
		Queries:         make([]RecordedQuery, 0, len(comps)),
	}
	for _, c := range comps {
		result.Queries = append(result.Queries, RecordedQuery{
			Seq:        c.Seq,
			Name:       c.Name,
			OutputHash: c.OutputHash,
			ErrorKind:  c.ErrorKind,
		})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Recorded run %s (%d query(ies))\n\n", result.RunID, len(result.Queries))
	for _, q := range result.Queries {
		if q.ErrorKind != "" {
			fmt.Fprintf(w, "  %3d %s: rejected (%s)\n", q.Seq, q.Name, q.ErrorKind)
			continue
		}
		fmt.Fprintf(w, "  %3d %s: %s\n", q.Seq, q.Name, q.OutputHash)
	}
	return nil
}
