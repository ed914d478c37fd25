package querydoc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/queryir"
)

var itemEntity = &queryir.Entity{Name: "Item", PrimaryKey: "id", Fields: []string{"id", "x", "y"}}

func field(name string) queryir.Field { return queryir.Field{Name: name} }

func lit(v any) queryir.Literal { return queryir.Literal{Value: v} }

func cmpExpr(op queryir.CompareOp, l, r queryir.Expr) queryir.Compare {
	return queryir.Compare{Op: op, Left: l, Right: r}
}

func eq(name string, v any) queryir.Compare {
	return cmpExpr(queryir.OpEq, field(name), lit(v))
}

func list(vs ...any) queryir.List {
	elems := make([]queryir.Expr, len(vs))
	for i, v := range vs {
		elems[i] = lit(v)
	}
	return queryir.List{Elems: elems}
}

func int64p(v int64) *int64 { return &v }

func canonical(t *testing.T, v any) string {
	t.Helper()
	b, err := ir.MarshalCanonical(v)
	require.NoError(t, err)
	return string(b)
}

// compileFilter compiles a schemaless query with the given wheres and
// returns its canonical filter.
func compileFilter(t *testing.T, wheres ...queryir.Expr) string {
	t.Helper()
	c, err := Compile(queryir.Query{Source: queryir.Source{Collection: "items"}, Wheres: wheres})
	require.NoError(t, err)
	return canonical(t, c.Filter)
}

func filterErr(wheres ...queryir.Expr) error {
	_, err := Compile(queryir.Query{Source: queryir.Source{Collection: "items"}, Wheres: wheres})
	return err
}
