package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadRun retrieves a run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_file, compiler_version, format_version
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.SourceFile, &run.CompilerVersion, &run.FormatVersion)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns every run, oldest first. Run IDs are UUIDv7, so ordering
// by ID is ordering by creation.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_file, compiler_version, format_version
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SourceFile, &run.CompilerVersion, &run.FormatVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run.
// Returns sql.ErrNoRows if the store is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs ORDER BY id COLLATE BINARY DESC LIMIT 1
	`).Scan(&id)
	if err != nil {
		return Run{}, err
	}
	return s.ReadRun(ctx, id)
}

// ReadCompilations returns the compilations of a run in seq order.
//
// Returns an empty slice (not nil) if the run has none.
func (s *Store) ReadCompilations(ctx context.Context, runID string) ([]Compilation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, name, source_id, source, output, output_hash, error_kind
		FROM compilations
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	defer rows.Close()

	comps := []Compilation{}
	for rows.Next() {
		c, err := scanCompilation(rows)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return comps, nil
}

// ReadCompilationsBySource returns every recorded compilation of a query
// source across runs, oldest run first.
func (s *Store) ReadCompilationsBySource(ctx context.Context, sourceID string) ([]Compilation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, name, source_id, source, output, output_hash, error_kind
		FROM compilations
		WHERE source_id = ?
		ORDER BY run_id COLLATE BINARY ASC, seq ASC
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	defer rows.Close()

	comps := []Compilation{}
	for rows.Next() {
		c, err := scanCompilation(rows)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return comps, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompilation(row rowScanner) (Compilation, error) {
	var c Compilation
	err := row.Scan(&c.RunID, &c.Seq, &c.Name, &c.SourceID, &c.Source, &c.Output, &c.OutputHash, &c.ErrorKind)
	if err != nil {
		if err == sql.ErrNoRows {
			return Compilation{}, err
		}
		return Compilation{}, fmt.Errorf("scan compilation: %w", err)
	}
	return c, nil
}
