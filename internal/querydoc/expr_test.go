package querydoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docq/internal/queryir"
)

func TestFilter_Comparisons(t *testing.T) {
	tests := []struct {
		name   string
		wheres []queryir.Expr
		want   string
	}{
		{"no wheres", nil, `{}`},
		{"equality", []queryir.Expr{eq("x", 42)}, `{"x":42}`},
		{"equality and inequality", []queryir.Expr{eq("x", 42), cmpExpr(queryir.OpNe, field("y"), lit(43))}, `{"x":42,"y":{"$ne":43}}`},
		{"less than", []queryir.Expr{cmpExpr(queryir.OpLt, field("x"), lit(1))}, `{"x":{"$lt":1}}`},
		{"less or equal", []queryir.Expr{cmpExpr(queryir.OpLte, field("x"), lit(1))}, `{"x":{"$lte":1}}`},
		{"greater than", []queryir.Expr{cmpExpr(queryir.OpGt, field("x"), lit(1.5))}, `{"x":{"$gt":1.5}}`},
		{"greater or equal", []queryir.Expr{cmpExpr(queryir.OpGte, field("x"), lit("m"))}, `{"x":{"$gte":"m"}}`},
		{"equal to null literal", []queryir.Expr{eq("x", nil)}, `{"x":null}`},
		{"reversed comparison is mirrored", []queryir.Expr{cmpExpr(queryir.OpLt, lit(42), field("x"))}, `{"x":{"$gt":42}}`},
		{"reversed equality", []queryir.Expr{cmpExpr(queryir.OpEq, lit("a"), field("x"))}, `{"x":"a"}`},
		{"param operand", []queryir.Expr{cmpExpr(queryir.OpEq, field("x"), queryir.Param{Index: 0, Value: true})}, `{"x":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compileFilter(t, tt.wheres...))
		})
	}
}

func TestFilter_NullTests(t *testing.T) {
	assert.Equal(t, `{"x":null}`, compileFilter(t, queryir.IsNil{Expr: field("x")}))
	assert.Equal(t, `{"x":{"$neq":null}}`, compileFilter(t, queryir.Not{Expr: queryir.IsNil{Expr: field("x")}}))
}

func TestFilter_Negation(t *testing.T) {
	t.Run("negated equality stays on the field", func(t *testing.T) {
		assert.Equal(t, `{"x":{"$neq":1}}`, compileFilter(t, queryir.Not{Expr: eq("x", 1)}))
	})

	t.Run("negated ordering becomes $not", func(t *testing.T) {
		got := compileFilter(t, queryir.Not{Expr: cmpExpr(queryir.OpGt, field("x"), lit(0))})
		assert.Equal(t, `{"$not":{"x":{"$gt":0}}}`, got)
	})

	t.Run("negated inequality becomes $not", func(t *testing.T) {
		got := compileFilter(t, queryir.Not{Expr: cmpExpr(queryir.OpNe, field("x"), lit(0))})
		assert.Equal(t, `{"$not":{"x":{"$ne":0}}}`, got)
	})

	t.Run("negated disjunction", func(t *testing.T) {
		got := compileFilter(t, queryir.Not{Expr: queryir.Or{Left: eq("a", 1), Right: eq("b", 2)}})
		assert.Equal(t, `{"$not":{"$or":[{"a":1},{"b":2}]}}`, got)
	})

	t.Run("double negation", func(t *testing.T) {
		got := compileFilter(t, queryir.Not{Expr: queryir.Not{Expr: eq("x", 1)}})
		assert.Equal(t, `{"$not":{"x":{"$neq":1}}}`, got)
	})
}

func TestFilter_Membership(t *testing.T) {
	t.Run("literal list", func(t *testing.T) {
		got := compileFilter(t, queryir.In{Left: field("x"), Right: list(1, 2, 3)})
		assert.Equal(t, `{"x":{"$in":[1,2,3]}}`, got)
	})

	t.Run("empty list", func(t *testing.T) {
		got := compileFilter(t, queryir.In{Left: field("x"), Right: queryir.List{}})
		assert.Equal(t, `{"x":{"$in":[]}}`, got)
	})

	t.Run("bound list", func(t *testing.T) {
		got := compileFilter(t, queryir.In{Left: field("x"), Right: queryir.Param{Index: 1, Value: []any{"a", "b"}}})
		assert.Equal(t, `{"x":{"$in":["a","b"]}}`, got)
	})

	t.Run("typed bound list", func(t *testing.T) {
		got := compileFilter(t, queryir.In{Left: field("x"), Right: queryir.Param{Index: 0, Value: []int{4, 5}}})
		assert.Equal(t, `{"x":{"$in":[4,5]}}`, got)
	})

	t.Run("list mixing params and literals", func(t *testing.T) {
		right := queryir.List{Elems: []queryir.Expr{lit(1), queryir.Param{Index: 0, Value: 2}}}
		got := compileFilter(t, queryir.In{Left: field("x"), Right: right})
		assert.Equal(t, `{"x":{"$in":[1,2]}}`, got)
	})

	t.Run("negated membership", func(t *testing.T) {
		got := compileFilter(t, queryir.Not{Expr: queryir.In{Left: field("x"), Right: list("a")}})
		assert.Equal(t, `{"x":{"$nin":["a"]}}`, got)
	})
}

func TestFilter_MembershipErrors(t *testing.T) {
	tests := []struct {
		name string
		expr queryir.Expr
	}{
		{"bound list on a non-field", queryir.In{Left: queryir.Param{Index: 0, Value: 1}, Right: queryir.Param{Index: 1, Value: []any{1}}}},
		{"literal on the left", queryir.In{Left: lit(1), Right: list(1)}},
		{"field on the right", queryir.In{Left: field("x"), Right: field("y")}},
		{"field inside the list", queryir.In{Left: field("x"), Right: queryir.List{Elems: []queryir.Expr{lit(1), field("y")}}}},
		{"bound scalar", queryir.In{Left: field("x"), Right: queryir.Param{Index: 0, Value: 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := filterErr(tt.expr)
			require.Error(t, err)
			assert.ErrorIs(t, err, queryir.ErrInvalidMembershipOperand)
		})
	}
}

func TestFilter_Connectives(t *testing.T) {
	t.Run("or with nested and", func(t *testing.T) {
		expr := queryir.Or{
			Left:  eq("a", 1),
			Right: queryir.And{Left: eq("b", 2), Right: eq("c", 3)},
		}
		assert.Equal(t, `{"$or":[{"a":1},{"$and":[{"b":2},{"c":3}]}]}`, compileFilter(t, expr))
	})

	t.Run("top-level and flattens", func(t *testing.T) {
		expr := queryir.And{Left: eq("x", 1), Right: queryir.And{Left: eq("y", 2), Right: eq("z", 3)}}
		assert.Equal(t, `{"x":1,"y":2,"z":3}`, compileFilter(t, expr))
	})

	t.Run("mixed conjuncts wrap in $and", func(t *testing.T) {
		got := compileFilter(t, eq("x", 1), queryir.Or{Left: eq("a", 1), Right: eq("b", 2)})
		assert.Equal(t, `{"$and":[{"x":1},{"$or":[{"a":1},{"b":2}]}]}`, got)
	})

	t.Run("boolean literal operands pass through", func(t *testing.T) {
		got := compileFilter(t, queryir.Or{Left: lit(true), Right: eq("x", 1)})
		assert.Equal(t, `{"$or":[true,{"x":1}]}`, got)
	})

	t.Run("lone boolean literal", func(t *testing.T) {
		assert.Equal(t, `{"$and":[false]}`, compileFilter(t, lit(false)))
	})

	t.Run("non-boolean literal operand", func(t *testing.T) {
		err := filterErr(queryir.Or{Left: lit(1), Right: eq("x", 1)})
		assert.ErrorIs(t, err, queryir.ErrUnrecognizedExpression)
	})
}

func TestFilter_MergeKeepsFirstPosition(t *testing.T) {
	got := compileFilter(t, eq("x", 1), eq("y", 2), eq("x", 3))
	assert.Equal(t, `{"x":3,"y":2}`, got)
}

func TestFilter_PrimaryKeyRendersAsID(t *testing.T) {
	q := queryir.Query{
		Source: queryir.Source{Collection: "items", Entity: itemEntity},
		Wheres: []queryir.Expr{eq("id", 5), eq("x", 1)},
	}
	c, err := Compile(q)
	require.NoError(t, err)
	assert.Equal(t, `{"_id":5,"x":1}`, canonical(t, c.Filter))
}

func TestFilter_PrimaryKeyWithoutEntityIsPlainField(t *testing.T) {
	assert.Equal(t, `{"id":5}`, compileFilter(t, eq("id", 5)))
}

func TestFilter_UnrecognizedExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr queryir.Expr
		kind error
	}{
		{"two fields", cmpExpr(queryir.OpEq, field("x"), field("y")), queryir.ErrUnrecognizedExpression},
		{"two literals", cmpExpr(queryir.OpEq, lit(1), lit(2)), queryir.ErrUnrecognizedExpression},
		{"unknown operator", cmpExpr("<>", field("x"), lit(1)), queryir.ErrUnrecognizedExpression},
		{"bare field", field("x"), queryir.ErrUnrecognizedExpression},
		{"is_nil of a literal", queryir.IsNil{Expr: lit(1)}, queryir.ErrUnrecognizedExpression},
		{"list as a clause", list(1), queryir.ErrUnrecognizedExpression},
		{"unencodable literal", eq("x", struct{}{}), queryir.ErrUnsupportedLiteral},
		{"unencodable inside list", queryir.In{Left: field("x"), Right: list(map[int]int{})}, queryir.ErrUnsupportedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := filterErr(tt.expr)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
