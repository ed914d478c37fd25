package querydoc

import (
	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/queryir"
)

// Envelope keys wrapping the filter of an ordered query.
const (
	keyQuery   = "$query"
	keyOrderBy = "$orderby"
)

// BuildSort compiles order expressions into a sort document mapping each
// field to 1 (ascending) or -1 (descending), in order. A field ordered twice
// keeps its first position and takes the last direction.
func BuildSort(orders []queryir.OrderBy, from From) (ir.IRDocument, error) {
	sort := ir.IRDocument{}
	for i, o := range orders {
		var field queryir.Field
		switch n := o.Expr.(type) {
		case queryir.Field:
			field = n
		case queryir.Fragment:
			return nil, queryir.Errorf(queryir.ErrUnsupportedFragment, "fragment %q", n.Text)
		default:
			return nil, queryir.Errorf(queryir.ErrUnrecognizedExpression,
				"order expression %d is %s, not a field", i, describe(o.Expr))
		}

		dir := ir.IRInt(1)
		if o.Dir == queryir.Desc {
			dir = -1
		}
		sort = sort.Set(from.FieldName(field), dir)
	}
	return sort, nil
}

// Envelope wraps a filter with its sort document as
// {"$query": filter, "$orderby": sort}. An empty sort leaves the filter as is.
func Envelope(filter, sort ir.IRDocument) ir.IRDocument {
	if sort.Len() == 0 {
		return filter
	}
	return ir.IRDocument{
		ir.E(keyQuery, filter),
		ir.E(keyOrderBy, sort),
	}
}
