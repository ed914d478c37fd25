package querydoc

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/queryir"
)

func sampleQuery() queryir.Query {
	return queryir.Query{
		Source: queryir.Source{Collection: "items", Entity: itemEntity},
		Wheres: []queryir.Expr{
			eq("x", 42),
			cmpExpr(queryir.OpNe, field("y"), lit(43)),
		},
		Select: field("x"),
		Limit:  int64p(10),
	}
}

func TestCompile_SampleQuery(t *testing.T) {
	c, err := Compile(sampleQuery())
	require.NoError(t, err)

	assert.Equal(t, `{"x":42,"y":{"$ne":43}}`, canonical(t, c.Filter))
	assert.Equal(t, `{"x":true}`, canonical(t, c.Projection))
	assert.Equal(t, Options{Limit: 10}, c.Options)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t,
		`{"from":{"collection":"items","entity":"Item","primary_key":"id"},`+
			`"filter":{"x":42,"y":{"$ne":43}},"projection":{"x":true},"options":{"limit":10,"skip":0}}`,
		string(out))
}

func TestCompile_EmptyQuery(t *testing.T) {
	c, err := Compile(queryir.Query{Source: queryir.Source{Collection: "items"}})
	require.NoError(t, err)

	assert.Equal(t, `{}`, canonical(t, c.Filter))
	assert.Equal(t, `{}`, canonical(t, c.Projection))
	assert.Equal(t, `{"limit":0,"skip":0}`, canonical(t, c.Options.Document()))
}

func TestCompile_Deterministic(t *testing.T) {
	q := sampleQuery()
	q.OrderBys = []queryir.OrderBy{{Expr: field("x"), Dir: queryir.Desc}}
	q.Wheres = append(q.Wheres, queryir.Or{Left: eq("a", 1), Right: queryir.Not{Expr: eq("b", 2)}})

	first, err := Compile(q)
	require.NoError(t, err)
	second, err := Compile(q)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Document(), second.Document()); diff != "" {
		t.Errorf("compiled documents differ (-first +second):\n%s", diff)
	}

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestCompile_ConcurrentUse(t *testing.T) {
	q := sampleQuery()
	want, err := Compile(q)
	require.NoError(t, err)
	wantHash, err := want.Hash()
	require.NoError(t, err)

	var wg sync.WaitGroup
	hashes := make([]string, 16)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := Compile(q)
			if err != nil {
				return
			}
			hashes[i], _ = c.Hash()
		}(i)
	}
	wg.Wait()

	for _, h := range hashes {
		assert.Equal(t, wantHash, h)
	}
}

func TestCompile_UnsupportedFeatures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*queryir.Query)
		kind   error
	}{
		{"lock", func(q *queryir.Query) { q.Lock = "FOR UPDATE" }, queryir.ErrUnsupportedLock},
		{"fragment in where", func(q *queryir.Query) {
			q.Wheres = append(q.Wheres, queryir.Fragment{Text: "x > 1"})
		}, queryir.ErrUnsupportedFragment},
		{"distinct", func(q *queryir.Query) { q.Distinct = true }, queryir.ErrUnsupportedDistinct},
		{"group by", func(q *queryir.Query) { q.GroupBy = []queryir.Expr{field("x")} }, queryir.ErrUnsupportedGroupBy},
		{"having", func(q *queryir.Query) { q.Having = []queryir.Expr{eq("x", 1)} }, queryir.ErrUnsupportedHaving},
		{"join", func(q *queryir.Query) {
			q.Joins = []queryir.Join{{Source: queryir.Source{Collection: "other"}}}
		}, queryir.ErrUnsupportedJoin},
		{"field of a joined source", func(q *queryir.Query) {
			q.Wheres = []queryir.Expr{cmpExpr(queryir.OpEq, queryir.Field{Binding: 1, Name: "x"}, lit(1))}
		}, queryir.ErrUnsupportedJoin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sampleQuery()
			tt.mutate(&q)

			c, err := Compile(q)
			assert.Nil(t, c)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var qerr *queryir.Error
			assert.ErrorAs(t, err, &qerr)
		})
	}
}

func TestCompiled_Hash(t *testing.T) {
	c, err := Compile(sampleQuery())
	require.NoError(t, err)

	h, err := c.Hash()
	require.NoError(t, err)
	assert.Equal(t, ir.MustOutputHash(c.Document()), h)
	assert.Len(t, h, 64)

	other := sampleQuery()
	other.Limit = int64p(11)
	c2, err := Compile(other)
	require.NoError(t, err)
	h2, err := c2.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h, h2)
}

func TestCompiled_BSON(t *testing.T) {
	q := sampleQuery()
	q.OrderBys = []queryir.OrderBy{{Expr: field("x")}}
	c, err := Compile(q)
	require.NoError(t, err)

	d, err := c.BSON()
	require.NoError(t, err)
	require.Len(t, d, 4)
	assert.Equal(t, "from", d[0].Key)
	assert.Equal(t, "filter", d[1].Key)

	filter, ok := d[1].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, "$query", filter[0].Key)
	assert.Equal(t, "$orderby", filter[1].Key)

	_, err = bson.Marshal(d)
	require.NoError(t, err)
}
