package querydoc

import (
	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/queryir"
)

// BuildProjection compiles the select clause of a query.
//
//   - No select clause yields an empty document.
//   - A field, or a tuple of fields, yields {field: true, ...} when the
//     source has an entity, and a list of [field, true] pairs otherwise.
//   - A bare literal or parameter yields a one-element list holding it.
func BuildProjection(sel queryir.Expr, from From) (ir.IRValue, error) {
	var fields []queryir.Field

	switch n := sel.(type) {
	case nil:
		return ir.IRDocument{}, nil
	case queryir.Field:
		fields = []queryir.Field{n}
	case queryir.Tuple:
		fields = make([]queryir.Field, 0, len(n.Elems))
		for i, el := range n.Elems {
			f, ok := el.(queryir.Field)
			if !ok {
				if frag, isFrag := el.(queryir.Fragment); isFrag {
					return nil, queryir.Errorf(queryir.ErrUnsupportedFragment, "fragment %q", frag.Text)
				}
				return nil, queryir.Errorf(queryir.ErrUnrecognizedExpression,
					"select element %d is %s, not a field", i, describe(el))
			}
			fields = append(fields, f)
		}
	case queryir.Literal:
		return literalProjection(n.Value)
	case queryir.Param:
		return literalProjection(n.Value)
	case queryir.Fragment:
		return nil, queryir.Errorf(queryir.ErrUnsupportedFragment, "fragment %q", n.Text)
	default:
		return nil, queryir.Errorf(queryir.ErrUnrecognizedExpression, "cannot select %s", describe(sel))
	}

	if from.HasEntity() {
		doc := ir.IRDocument{}
		for _, f := range fields {
			doc = doc.Set(from.FieldName(f), ir.IRBool(true))
		}
		return doc, nil
	}

	pairs := make(ir.IRArray, 0, len(fields))
	for _, f := range fields {
		pairs = append(pairs, ir.IRArray{ir.IRString(f.Name), ir.IRBool(true)})
	}
	return pairs, nil
}

func literalProjection(v any) (ir.IRValue, error) {
	val, err := encodeLiteral(v)
	if err != nil {
		return nil, err
	}
	return ir.IRArray{val}, nil
}
