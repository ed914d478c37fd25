package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docq/internal/querydoc"
	"github.com/roach88/docq/internal/queryir"
	"github.com/roach88/docq/internal/queryspec"
)

// QueryValidation is the validation outcome of one query.
type QueryValidation struct {
	Name  string    `json:"name"`
	Line  int       `json:"line,omitempty"`
	Valid bool      `json:"valid"`
	Error *CLIError `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Queries []QueryValidation `json:"queries"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Check that every query compiles",
		Long: `Check a query file against the schema and report every query the
compiler would reject, without printing compiled documents.

Exit codes:
  0 - Every query is valid
  1 - One or more queries would be rejected
  2 - The file could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	queries, err := LoadQueries(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	result := ValidationResult{Valid: true, Queries: make([]QueryValidation, 0, len(queries))}
	for _, q := range queries {
		formatter.VerboseLog("Validating query: %s", q.Name)
		v := validateQuery(q)
		if !v.Valid {
			result.Valid = false
		}
		result.Queries = append(result.Queries, v)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, path, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateQuery runs the feature checks first, so the reported kind for a
// query using several unsupported features is the one Validate finds.
func validateQuery(q queryspec.Named) QueryValidation {
	v := QueryValidation{Name: q.Name, Valid: true}
	if q.Pos.IsValid() {
		v.Line = q.Pos.Line()
	}

	err := queryir.Validate(q.Query)
	if err == nil {
		_, err = querydoc.Compile(q.Query)
	}
	if err != nil {
		v.Valid = false
		v.Error = &CLIError{Code: CodeForError(err), Message: err.Error()}
	}
	return v
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ All %d query(ies) valid\n", len(result.Queries))
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, path string, result ValidationResult) error {
	invalid := 0
	var first *CLIError
	for _, q := range result.Queries {
		if !q.Valid {
			invalid++
			if first == nil {
				first = q.Error
			}
		}
	}
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", invalid))

	if formatter.JSON() {
		if err := formatter.Failure(*first, result); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, q := range result.Queries {
		if q.Valid {
			continue
		}
		if q.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d: %s\n", path, q.Line, q.Name)
		} else {
			fmt.Fprintf(formatter.Writer, "%s: %s\n", path, q.Name)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", q.Error.Code, q.Error.Message)
	}
	return exitErr
}
