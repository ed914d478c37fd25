package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source_file, compiler_version, format_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.SourceFile, run.CompilerVersion, run.FormatVersion)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteCompilation inserts a compilation record.
// Uses ON CONFLICT(run_id, seq) DO NOTHING for idempotency.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteCompilation(ctx context.Context, c Compilation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compilations
		(run_id, seq, name, source_id, source, output, output_hash, error_kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		c.RunID,
		c.Seq,
		c.Name,
		c.SourceID,
		c.Source,
		c.Output,
		c.OutputHash,
		c.ErrorKind,
	)
	if err != nil {
		return fmt.Errorf("write compilation: %w", err)
	}
	return nil
}

// WriteRunWithCompilations writes a run and its compilations in one
// transaction.
func (s *Store) WriteRunWithCompilations(ctx context.Context, run Run, comps []Compilation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, source_file, compiler_version, format_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.SourceFile, run.CompilerVersion, run.FormatVersion); err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for _, c := range comps {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO compilations
			(run_id, seq, name, source_id, source, output, output_hash, error_kind)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, seq) DO NOTHING
		`, run.ID, c.Seq, c.Name, c.SourceID, c.Source, c.Output, c.OutputHash, c.ErrorKind); err != nil {
			return fmt.Errorf("write compilation %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
