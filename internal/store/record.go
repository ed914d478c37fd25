package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/querydoc"
	"github.com/roach88/docq/internal/queryir"
	"github.com/roach88/docq/internal/queryspec"
)

// RunIDGenerator produces run IDs.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so runs sort by
// creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Recorder compiles query files and writes the outcomes to a Store.
type Recorder struct {
	store  *Store
	ids    RunIDGenerator
	logger *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRunIDGenerator overrides the run ID source.
func WithRunIDGenerator(g RunIDGenerator) RecorderOption {
	return func(r *Recorder) { r.ids = g }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

// NewRecorder creates a Recorder writing to s.
func NewRecorder(s *Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  s,
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record compiles every query and stores the results as one run.
//
// Queries rejected by the compiler are recorded with their error kind; they
// are outcomes, not failures of Record.
func (r *Recorder) Record(ctx context.Context, sourceFile string, queries []queryspec.Named) (Run, []Compilation, error) {
	run := Run{
		ID:              r.ids.Generate(),
		SourceFile:      sourceFile,
		CompilerVersion: ir.CompilerVersion,
		FormatVersion:   ir.FormatVersion,
	}

	comps := make([]Compilation, 0, len(queries))
	for i, q := range queries {
		source, err := ir.MarshalCanonical(q.Source)
		if err != nil {
			return Run{}, nil, fmt.Errorf("record %q: canonical source: %w", q.Name, err)
		}
		sourceID, err := ir.SourceID(q.Name, q.Source)
		if err != nil {
			return Run{}, nil, fmt.Errorf("record %q: %w", q.Name, err)
		}

		out, err := compileSource(source)
		if err != nil {
			return Run{}, nil, fmt.Errorf("record %q: %w", q.Name, err)
		}

		comp := Compilation{
			RunID:      run.ID,
			Seq:        int64(i + 1),
			Name:       q.Name,
			SourceID:   sourceID,
			Source:     string(source),
			Output:     out.output,
			OutputHash: out.hash,
			ErrorKind:  out.errorKind,
		}
		r.logger.Debug("query compiled",
			"run_id", run.ID,
			"name", comp.Name,
			"hash", comp.OutputHash,
			"error_kind", comp.ErrorKind,
		)
		comps = append(comps, comp)
	}

	if err := r.store.WriteRunWithCompilations(ctx, run, comps); err != nil {
		return Run{}, nil, err
	}

	r.logger.Info("run recorded",
		"run_id", run.ID,
		"source_file", sourceFile,
		"queries", len(comps),
	)
	return run, comps, nil
}

// outcome is the result of compiling one recorded source.
type outcome struct {
	output    string
	hash      string
	errorKind string
}

// compileSource parses and compiles a canonical JSON query definition.
// Record and replay both go through here so they see identical input.
// Compiler rejections are returned as an outcome; anything else is an error.
func compileSource(source []byte) (outcome, error) {
	dec := json.NewDecoder(bytes.NewReader(source))
	dec.UseNumber()

	var def map[string]any
	if err := dec.Decode(&def); err != nil {
		return outcome{}, fmt.Errorf("decode source: %w", err)
	}

	q, err := queryspec.Parse(def)
	if err != nil {
		return outcome{}, fmt.Errorf("parse source: %w", err)
	}

	compiled, err := querydoc.Compile(q)
	if err != nil {
		kind := queryir.KindName(err)
		if kind == "" {
			return outcome{}, fmt.Errorf("compile: %w", err)
		}
		return outcome{errorKind: kind}, nil
	}

	output, err := compiled.MarshalJSON()
	if err != nil {
		return outcome{}, fmt.Errorf("marshal output: %w", err)
	}
	hash, err := compiled.Hash()
	if err != nil {
		return outcome{}, fmt.Errorf("hash output: %w", err)
	}
	return outcome{output: string(output), hash: hash}, nil
}
