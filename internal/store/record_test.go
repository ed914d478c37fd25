package store

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docq/internal/ir"
)

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, UUIDv7Generator{}.Generate())
}

func TestRecord_StoresOutcomes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	queries := loadTestQueries(t, "queries.yaml")

	run, comps, err := createTestRecorder(t, s).Record(ctx, "queries.yaml", queries)
	require.NoError(t, err)

	assert.Equal(t, "run-00000001", run.ID)
	assert.Equal(t, ir.CompilerVersion, run.CompilerVersion)
	assert.Equal(t, ir.FormatVersion, run.FormatVersion)
	require.Len(t, comps, 3)

	cheap := comps[0]
	assert.Equal(t, int64(1), cheap.Seq)
	assert.Equal(t, "cheap_items", cheap.Name)
	assert.Equal(t,
		`{"from":{"collection":"items","entity":"Item","primary_key":"id"},`+
			`"filter":{"$query":{"price":{"$lt":10},"sku":{"$neq":null}},"$orderby":{"price":-1}},`+
			`"projection":{"_id":true,"price":true},"options":{"limit":5,"skip":0}}`,
		cheap.Output)
	assert.Len(t, cheap.OutputHash, 64)
	assert.Empty(t, cheap.ErrorKind)

	grouped := comps[1]
	assert.Equal(t, "unsupported_group_by", grouped.ErrorKind)
	assert.Empty(t, grouped.Output)
	assert.Empty(t, grouped.OutputHash)

	stored, err := s.ReadCompilations(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, comps, stored)
}

func TestRecord_SourceIsCanonical(t *testing.T) {
	s := createTestStore(t)
	queries := loadTestQueries(t, "queries.yaml")

	_, comps, err := createTestRecorder(t, s).Record(context.Background(), "queries.yaml", queries)
	require.NoError(t, err)

	assert.Equal(t,
		`{"from":"items","name":"tagged","where":[["in",{"field":"tags"},{"list":["a","b"]}]]}`,
		comps[2].Source)

	wantID, err := ir.SourceID("tagged", queries[2].Source)
	require.NoError(t, err)
	assert.Equal(t, wantID, comps[2].SourceID)
}

func TestRecord_Logs(t *testing.T) {
	s := createTestStore(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rec := NewRecorder(s, WithLogger(logger), WithRunIDGenerator(UUIDv7Generator{}))
	_, _, err := rec.Record(context.Background(), "queries.yaml", loadTestQueries(t, "queries.yaml"))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "run recorded")
	assert.Contains(t, buf.String(), "queries=3")
}

func TestReplay_Matches(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, _, err := createTestRecorder(t, s).Record(ctx, "queries.yaml", loadTestQueries(t, "queries.yaml"))
	require.NoError(t, err)

	report, err := s.Replay(ctx, run.ID)
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.False(t, report.VersionChanged)
	require.Len(t, report.Results, 3)
	for _, res := range report.Results {
		assert.True(t, res.Match, "query %s", res.Recorded.Name)
		assert.Equal(t, res.Recorded.Output, res.Output)
	}
	assert.Equal(t, "unsupported_group_by", report.Results[1].ErrorKind)
}

func TestReplay_DetectsChangedOutput(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, _, err := createTestRecorder(t, s).Record(ctx, "queries.yaml", loadTestQueries(t, "queries.yaml"))
	require.NoError(t, err)

	// Simulate a recording made by a compiler that produced different output.
	_, err = s.DB().ExecContext(ctx,
		`UPDATE compilations SET output_hash = 'stale', output = '{}' WHERE run_id = ? AND seq = 3`, run.ID)
	require.NoError(t, err)
	_, err = s.DB().ExecContext(ctx,
		`UPDATE runs SET compiler_version = '0.0.1' WHERE id = ?`, run.ID)
	require.NoError(t, err)

	report, err := s.Replay(ctx, run.ID)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.True(t, report.VersionChanged)
	mismatches := report.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Equal(t, "tagged", mismatches[0].Recorded.Name)
	assert.Equal(t, `{}`, mismatches[0].Recorded.Output)
	assert.NotEqual(t, "stale", mismatches[0].OutputHash)
}

func TestReplay_DetectsChangedErrorKind(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, _, err := createTestRecorder(t, s).Record(ctx, "queries.yaml", loadTestQueries(t, "queries.yaml"))
	require.NoError(t, err)

	_, err = s.DB().ExecContext(ctx,
		`UPDATE compilations SET error_kind = 'unsupported_having' WHERE run_id = ? AND seq = 2`, run.ID)
	require.NoError(t, err)

	report, err := s.Replay(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, report.Mismatches(), 1)
	assert.Equal(t, "unsupported_group_by", report.Mismatches()[0].ErrorKind)
}

func TestReplay_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Replay(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
