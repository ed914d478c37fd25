package querydoc

import (
	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/queryir"
)

// Operator keys of the filter language.
const (
	keyAnd = "$and"
	keyOr  = "$or"
	keyNot = "$not"
	keyIn  = "$in"
	keyNin = "$nin"
	keyNe  = "$ne"
	// keyNeq is produced by explicit negation of an equality or a null
	// test. It is distinct from keyNe, which comes from the != operator.
	keyNeq = "$neq"
)

// compareKeys maps ordering comparisons to their operator keys.
// == and != are handled separately.
var compareKeys = map[queryir.CompareOp]string{
	queryir.OpLt:  "$lt",
	queryir.OpLte: "$lte",
	queryir.OpGt:  "$gt",
	queryir.OpGte: "$gte",
}

// exprCompiler compiles expression trees into filter documents.
// It holds only the resolved source, used for field naming.
type exprCompiler struct {
	from From
}

// filter compiles the where clauses of a query.
//
// Where clauses and top-level conjunctions are flattened into one list of
// conjuncts first. If every conjunct is a direct field comparison, they merge
// into one flat document, later clauses overwriting earlier ones on the same
// field. Otherwise the conjuncts are wrapped in $and, except that a single
// conjunct compiling to a document is returned as is.
func (c *exprCompiler) filter(wheres []queryir.Expr) (ir.IRDocument, error) {
	conjuncts := flattenAnd(wheres, nil)
	if len(conjuncts) == 0 {
		return ir.IRDocument{}, nil
	}

	if allSimple(conjuncts) {
		doc := ir.IRDocument{}
		for _, e := range conjuncts {
			key, val, err := c.pair(e)
			if err != nil {
				return nil, err
			}
			doc = doc.Set(key, val)
		}
		return doc, nil
	}

	values := make(ir.IRArray, 0, len(conjuncts))
	for _, e := range conjuncts {
		v, err := c.value(e)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	if len(values) == 1 {
		if doc, ok := values[0].(ir.IRDocument); ok {
			return doc, nil
		}
	}
	return ir.IRDocument{ir.E(keyAnd, values)}, nil
}

// value compiles any boolean expression into a filter value: a document,
// or a bare boolean for literal operands of connectives.
func (c *exprCompiler) value(e queryir.Expr) (ir.IRValue, error) {
	if isSimple(e) {
		key, val, err := c.pair(e)
		if err != nil {
			return nil, err
		}
		return ir.IRDocument{ir.E(key, val)}, nil
	}

	switch n := e.(type) {
	case queryir.And:
		return c.connective(keyAnd, n.Left, n.Right)
	case queryir.Or:
		return c.connective(keyOr, n.Left, n.Right)
	case queryir.Not:
		inner, err := c.value(n.Expr)
		if err != nil {
			return nil, err
		}
		return ir.IRDocument{ir.E(keyNot, inner)}, nil
	case queryir.Literal:
		return c.boolOperand(n.Value)
	case queryir.Param:
		return c.boolOperand(n.Value)
	case queryir.Fragment:
		return nil, queryir.Errorf(queryir.ErrUnsupportedFragment, "fragment %q", n.Text)
	default:
		return nil, queryir.Errorf(queryir.ErrUnrecognizedExpression, "%s is not a boolean expression", describe(e))
	}
}

func (c *exprCompiler) connective(key string, left, right queryir.Expr) (ir.IRValue, error) {
	l, err := c.value(left)
	if err != nil {
		return nil, err
	}
	r, err := c.value(right)
	if err != nil {
		return nil, err
	}
	return ir.IRDocument{ir.E(key, ir.IRArray{l, r})}, nil
}

// boolOperand passes a literal true/false through unchanged.
func (c *exprCompiler) boolOperand(v any) (ir.IRValue, error) {
	lit, err := encodeLiteral(v)
	if err != nil {
		return nil, err
	}
	if b, ok := lit.(ir.IRBool); ok {
		return b, nil
	}
	return nil, queryir.Errorf(queryir.ErrUnrecognizedExpression, "literal %T used as a boolean operand", v)
}

// pair compiles a direct field comparison into its (field, value) entry.
func (c *exprCompiler) pair(e queryir.Expr) (string, ir.IRValue, error) {
	switch n := e.(type) {
	case queryir.Compare:
		field, val, op, err := c.comparison(n)
		if err != nil {
			return "", nil, err
		}
		switch op {
		case queryir.OpEq:
			return field, val, nil
		case queryir.OpNe:
			return field, ir.IRDocument{ir.E(keyNe, val)}, nil
		default:
			return field, ir.IRDocument{ir.E(compareKeys[op], val)}, nil
		}

	case queryir.IsNil:
		field, err := c.field(n.Expr)
		if err != nil {
			return "", nil, err
		}
		return field, ir.IRNull{}, nil

	case queryir.In:
		field, list, err := c.membership(n)
		if err != nil {
			return "", nil, err
		}
		return field, ir.IRDocument{ir.E(keyIn, list)}, nil

	case queryir.Not:
		return c.negatedPair(n.Expr)
	}

	return "", nil, queryir.Errorf(queryir.ErrUnrecognizedExpression, "%s is not a field comparison", describe(e))
}

// negatedPair compiles the negations that stay attached to their field:
// not (f == v), not is_nil(f) and not (f in list).
func (c *exprCompiler) negatedPair(e queryir.Expr) (string, ir.IRValue, error) {
	switch n := e.(type) {
	case queryir.Compare:
		field, val, op, err := c.comparison(n)
		if err != nil {
			return "", nil, err
		}
		if op != queryir.OpEq {
			break
		}
		return field, ir.IRDocument{ir.E(keyNeq, val)}, nil

	case queryir.IsNil:
		field, err := c.field(n.Expr)
		if err != nil {
			return "", nil, err
		}
		return field, ir.IRDocument{ir.E(keyNeq, ir.IRNull{})}, nil

	case queryir.In:
		field, list, err := c.membership(n)
		if err != nil {
			return "", nil, err
		}
		return field, ir.IRDocument{ir.E(keyNin, list)}, nil
	}

	return "", nil, queryir.Errorf(queryir.ErrUnrecognizedExpression, "negated %s is not a field comparison", describe(e))
}

// comparison normalizes a comparison to field-on-the-left orientation and
// returns the field name, the encoded operand and the (mirrored) operator.
func (c *exprCompiler) comparison(n queryir.Compare) (string, ir.IRValue, queryir.CompareOp, error) {
	if !n.Op.Valid() {
		return "", nil, "", queryir.Errorf(queryir.ErrUnrecognizedExpression, "comparison operator %q", n.Op)
	}

	if f, ok := n.Left.(queryir.Field); ok {
		val, err := c.operand(n.Right)
		if err != nil {
			return "", nil, "", err
		}
		return c.from.FieldName(f), val, n.Op, nil
	}

	if f, ok := n.Right.(queryir.Field); ok {
		val, err := c.operand(n.Left)
		if err != nil {
			return "", nil, "", err
		}
		return c.from.FieldName(f), val, n.Op.Mirror(), nil
	}

	return "", nil, "", queryir.Errorf(queryir.ErrUnrecognizedExpression,
		"comparison of %s and %s has no field operand", describe(n.Left), describe(n.Right))
}

// operand encodes the value side of a comparison.
func (c *exprCompiler) operand(e queryir.Expr) (ir.IRValue, error) {
	switch n := e.(type) {
	case queryir.Literal:
		return encodeLiteral(n.Value)
	case queryir.Param:
		return encodeLiteral(n.Value)
	case queryir.Fragment:
		return nil, queryir.Errorf(queryir.ErrUnsupportedFragment, "fragment %q", n.Text)
	default:
		return nil, queryir.Errorf(queryir.ErrUnrecognizedExpression, "%s cannot be compared to a field", describe(e))
	}
}

// field resolves the operand of a null test.
func (c *exprCompiler) field(e queryir.Expr) (string, error) {
	switch n := e.(type) {
	case queryir.Field:
		return c.from.FieldName(n), nil
	case queryir.Fragment:
		return "", queryir.Errorf(queryir.ErrUnsupportedFragment, "fragment %q", n.Text)
	default:
		return "", queryir.Errorf(queryir.ErrUnrecognizedExpression, "is_nil of %s", describe(e))
	}
}

// membership resolves `field in list`. The left operand must be a field;
// the right operand a literal list of literals/params, or a literal/param
// bound to a list.
func (c *exprCompiler) membership(n queryir.In) (string, ir.IRArray, error) {
	f, ok := n.Left.(queryir.Field)
	if !ok {
		return "", nil, queryir.Errorf(queryir.ErrInvalidMembershipOperand,
			"left operand of in must be a field reference, got %s", describe(n.Left))
	}

	switch r := n.Right.(type) {
	case queryir.List:
		list := make(ir.IRArray, 0, len(r.Elems))
		for i, el := range r.Elems {
			var raw any
			switch v := el.(type) {
			case queryir.Literal:
				raw = v.Value
			case queryir.Param:
				raw = v.Value
			default:
				return "", nil, queryir.Errorf(queryir.ErrInvalidMembershipOperand,
					"element %d of in list is %s, not a literal", i, describe(el))
			}
			val, err := encodeLiteral(raw)
			if err != nil {
				return "", nil, err
			}
			list = append(list, val)
		}
		return c.from.FieldName(f), list, nil

	case queryir.Literal, queryir.Param:
		var raw any
		if lit, ok := r.(queryir.Literal); ok {
			raw = lit.Value
		} else {
			raw = r.(queryir.Param).Value
		}
		val, err := encodeLiteral(raw)
		if err != nil {
			return "", nil, err
		}
		list, ok := val.(ir.IRArray)
		if !ok {
			return "", nil, queryir.Errorf(queryir.ErrInvalidMembershipOperand,
				"right operand of in is bound to %T, not a list", raw)
		}
		return c.from.FieldName(f), list, nil

	default:
		return "", nil, queryir.Errorf(queryir.ErrInvalidMembershipOperand,
			"right operand of in must be a list, got %s", describe(n.Right))
	}
}

// flattenAnd appends the conjuncts of exprs to out, descending into And nodes.
func flattenAnd(exprs []queryir.Expr, out []queryir.Expr) []queryir.Expr {
	for _, e := range exprs {
		switch n := e.(type) {
		case nil:
			continue
		case queryir.And:
			out = flattenAnd([]queryir.Expr{n.Left, n.Right}, out)
		default:
			out = append(out, e)
		}
	}
	return out
}

// isSimple reports whether e compiles to a single field-keyed entry.
func isSimple(e queryir.Expr) bool {
	switch n := e.(type) {
	case queryir.Compare, queryir.IsNil, queryir.In:
		return true
	case queryir.Not:
		switch inner := n.Expr.(type) {
		case queryir.Compare:
			return inner.Op == queryir.OpEq
		case queryir.IsNil, queryir.In:
			return true
		}
	}
	return false
}

func allSimple(exprs []queryir.Expr) bool {
	for _, e := range exprs {
		if !isSimple(e) {
			return false
		}
	}
	return true
}

// encodeLiteral runs the literal encoder and maps its failure to a query error.
func encodeLiteral(v any) (ir.IRValue, error) {
	val, err := ir.Encode(v)
	if err != nil {
		return nil, queryir.Errorf(queryir.ErrUnsupportedLiteral, "%v", err)
	}
	return val, nil
}

// describe names an expression kind for error messages.
func describe(e queryir.Expr) string {
	switch n := e.(type) {
	case nil:
		return "nothing"
	case queryir.Field:
		return "field " + n.Name
	case queryir.Literal:
		return "a literal"
	case queryir.Param:
		return "a parameter"
	case queryir.Compare:
		return "comparison " + string(n.Op)
	case queryir.And:
		return "and"
	case queryir.Or:
		return "or"
	case queryir.Not:
		return "not"
	case queryir.In:
		return "in"
	case queryir.IsNil:
		return "is_nil"
	case queryir.List:
		return "a list"
	case queryir.Tuple:
		return "a tuple"
	case queryir.Fragment:
		return "a fragment"
	default:
		return "an unknown expression"
	}
}
