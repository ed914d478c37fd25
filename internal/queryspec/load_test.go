package queryspec

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docq/internal/queryir"
)

func TestLoadFile_YAML(t *testing.T) {
	queries, err := LoadFile("testdata/items.yaml")
	require.NoError(t, err)
	require.Len(t, queries, 2)

	byPrice := queries[0]
	assert.Equal(t, "by_price", byPrice.Name)
	assert.True(t, byPrice.Pos.IsValid())

	q := byPrice.Query
	require.NotNil(t, q.Source.Entity)
	assert.Equal(t, "sku", q.Source.Entity.PrimaryKey)
	assert.Equal(t, []string{"sku", "price", "tags"}, q.Source.Entity.Fields)
	require.Len(t, q.Wheres, 2)
	assert.Equal(t, queryir.Compare{
		Op:    queryir.OpGte,
		Left:  queryir.Field{Name: "price"},
		Right: queryir.Literal{Value: int64(10)},
	}, q.Wheres[0])
	assert.Len(t, q.OrderBys, 2)
	assert.Equal(t, queryir.Desc, q.OrderBys[0].Dir)
	assert.Equal(t, int64(20), *q.Limit)
	assert.Equal(t, int64(40), *q.Offset)

	assert.Equal(t, "missing_owner", queries[1].Name)
	assert.IsType(t, queryir.Or{}, queries[1].Query.Wheres[0])
}

func TestLoadFile_JSON(t *testing.T) {
	queries, err := LoadFile("testdata/items.json")
	require.NoError(t, err)
	require.Len(t, queries, 1)

	in, ok := queries[0].Query.Wheres[0].(queryir.In)
	require.True(t, ok)
	assert.Equal(t, queryir.Param{Index: 0, Value: []any{int64(1), int64(2), int64(3)}}, in.Right)

	// The recorded source keeps numbers as written.
	assert.Equal(t, json.Number("5"), queries[0].Source["limit"])
}

func TestLoadFile_CUE(t *testing.T) {
	queries, err := LoadFile("testdata/items.cue")
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Equal(t, "by_id", queries[0].Name)
	assert.Equal(t, "Item", queries[0].Query.Source.Entity.Name)

	cheap := queries[1].Query
	assert.Equal(t, queryir.Literal{Value: 2.5}, cheap.Wheres[0].(queryir.Compare).Right)
	assert.Equal(t, queryir.Field{Name: "price"}, cheap.Select)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{"schema violation", "testdata/bad_limit.yaml", "limit"},
		{"closed schema", "testdata/unknown_key.json", "wherever"},
		{"duplicate name", "testdata/duplicate.yaml", "duplicate query name"},
		{"bad operator", "testdata/bad_operator.yaml", `unknown operator "like"`},
		{"missing file", "testdata/nope.yaml", "reading query file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path)
			require.Error(t, err)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadBytes_UnsupportedExtension(t *testing.T) {
	_, err := LoadBytes("queries.toml", []byte(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadBytes_EmptyQueries(t *testing.T) {
	_, err := LoadBytes("empty.json", []byte(`{"queries": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no queries found")
	assert.ErrorIs(t, err, ErrNoQueries)
}

func TestLoadError_Position(t *testing.T) {
	_, err := LoadFile("testdata/duplicate.yaml")
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "q", loadErr.Query)
	assert.True(t, loadErr.Pos.IsValid())
	assert.Contains(t, err.Error(), "duplicate.yaml:")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("testdata/nope.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
