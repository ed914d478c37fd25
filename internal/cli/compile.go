package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/querydoc"
	"github.com/roach88/docq/internal/queryspec"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledQuery is the outcome of compiling one named query.
type CompiledQuery struct {
	Name     string          `json:"name"`
	SourceID string          `json:"source_id"`
	Hash     string          `json:"hash,omitempty"`
	Compiled json.RawMessage `json:"compiled,omitempty"`
	Error    *CLIError       `json:"error,omitempty"`
}

// CompilationResult holds the outcome of every query in a file.
type CompilationResult struct {
	File     string          `json:"file"`
	Queries  []CompiledQuery `json:"queries"`
	Compiled int             `json:"compiled"`
	Failed   int             `json:"failed"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Compile queries to filter documents",
		Long: `Compile every query of a YAML, JSON or CUE query file into its
canonical {from, filter, projection, options} document.

Exit codes:
  0 - Every query compiled
  2 - A query was rejected or the file could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	queries, err := LoadQueries(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d query(ies) from %s", len(queries), path)

	result := &CompilationResult{File: path, Queries: make([]CompiledQuery, 0, len(queries))}
	for _, q := range queries {
		cq, err := compileQuery(q)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error())
		}
		logger.Debug("query compiled", "name", cq.Name, "hash", cq.Hash)
		if cq.Error != nil {
			result.Failed++
		} else {
			result.Compiled++
		}
		result.Queries = append(result.Queries, cq)
	}

	if result.Failed > 0 {
		return outputCompileFailures(formatter, result)
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// compileQuery compiles one query. Compiler rejections are reported in the
// returned CompiledQuery; the error is reserved for unclassified failures.
func compileQuery(q queryspec.Named) (CompiledQuery, error) {
	sourceID, err := ir.SourceID(q.Name, q.Source)
	if err != nil {
		return CompiledQuery{}, fmt.Errorf("query %q: %w", q.Name, err)
	}
	cq := CompiledQuery{Name: q.Name, SourceID: sourceID}

	compiled, err := querydoc.Compile(q.Query)
	if err != nil {
		code := CodeForError(err)
		if code == ErrCodeGeneric {
			return CompiledQuery{}, fmt.Errorf("query %q: %w", q.Name, err)
		}
		cq.Error = &CLIError{Code: code, Message: err.Error()}
		return cq, nil
	}

	doc, err := compiled.MarshalJSON()
	if err != nil {
		return CompiledQuery{}, fmt.Errorf("query %q: %w", q.Name, err)
	}
	hash, err := compiled.Hash()
	if err != nil {
		return CompiledQuery{}, fmt.Errorf("query %q: %w", q.Name, err)
	}
	cq.Compiled = doc
	cq.Hash = hash
	return cq, nil
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d query(ies)\n\n", result.Compiled)
	for _, q := range result.Queries {
		fmt.Fprintf(w, "%s\n  %s\n  sha256:%s\n", q.Name, q.Compiled, q.Hash)
	}
	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote compiled documents to %s\n", outputFile)
	}
	return nil
}

func outputCompileFailures(formatter *OutputFormatter, result *CompilationResult) error {
	exitErr := NewExitError(ExitCommandError,
		fmt.Sprintf("compilation failed for %d of %d query(ies)", result.Failed, len(result.Queries)))

	if formatter.JSON() {
		for _, q := range result.Queries {
			if q.Error != nil {
				if err := formatter.Failure(*q.Error, result); err != nil {
					return err
				}
				break
			}
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Compilation failed")
	fmt.Fprintln(w)
	for _, q := range result.Queries {
		if q.Error != nil {
			fmt.Fprintf(w, "%s\n  %s: %s\n\n", q.Name, q.Error.Code, q.Error.Message)
		}
	}
	return exitErr
}

// writeResultToFile writes the compilation result as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
