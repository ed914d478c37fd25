package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/docq/internal/queryspec"
	"github.com/roach88/docq/internal/testutil"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecorder creates a recorder with predictable run IDs.
func createTestRecorder(t *testing.T, s *Store) *Recorder {
	t.Helper()
	return NewRecorder(s, WithRunIDGenerator(testutil.NewRunIDSequence("run")))
}

// loadTestQueries loads a query file from testdata.
func loadTestQueries(t *testing.T, name string) []queryspec.Named {
	t.Helper()
	queries, err := queryspec.LoadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFile(%s) failed: %v", name, err)
	}
	return queries
}

func createTestCompilation(runID string, seq int64, name string) Compilation {
	return Compilation{
		RunID:      runID,
		Seq:        seq,
		Name:       name,
		SourceID:   "source-" + name,
		Source:     `{"from":"items"}`,
		Output:     `{}`,
		OutputHash: "hash-" + name,
	}
}
