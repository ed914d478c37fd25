package store

import (
	"context"
	"fmt"

	"github.com/roach88/docq/internal/ir"
)

// ReplayResult compares one recorded compilation with a fresh one.
type ReplayResult struct {
	Recorded   Compilation
	Output     string
	OutputHash string
	ErrorKind  string
	Match      bool
}

// ReplayReport is the outcome of replaying a run.
type ReplayReport struct {
	Run Run
	// VersionChanged is true when the run was recorded by a different
	// compiler version than the current one.
	VersionChanged bool
	Results        []ReplayResult
}

// Mismatches returns the results whose fresh compilation differs from the
// recording.
func (r *ReplayReport) Mismatches() []ReplayResult {
	var out []ReplayResult
	for _, res := range r.Results {
		if !res.Match {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether every compilation replayed identically.
func (r *ReplayReport) OK() bool {
	return len(r.Mismatches()) == 0
}

// Replay recompiles every source recorded in a run and compares output
// hashes, or error kinds for recorded rejections.
//
// Returns sql.ErrNoRows (wrapped) if the run does not exist.
func (s *Store) Replay(ctx context.Context, runID string) (*ReplayReport, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	comps, err := s.ReadCompilations(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	report := &ReplayReport{
		Run:            run,
		VersionChanged: run.CompilerVersion != ir.CompilerVersion,
		Results:        make([]ReplayResult, 0, len(comps)),
	}

	for _, c := range comps {
		out, err := compileSource([]byte(c.Source))
		if err != nil {
			return nil, fmt.Errorf("replay %s seq %d (%s): %w", runID, c.Seq, c.Name, err)
		}
		report.Results = append(report.Results, ReplayResult{
			Recorded:   c,
			Output:     out.output,
			OutputHash: out.hash,
			ErrorKind:  out.errorKind,
			Match:      out.hash == c.OutputHash && out.errorKind == c.ErrorKind,
		})
	}

	return report, nil
}
