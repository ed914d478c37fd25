package queryir

// Inspect traverses e in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped. Nil
// expressions are not visited.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}

	switch n := e.(type) {
	case Compare:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case And:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case Or:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case Not:
		Inspect(n.Expr, f)
	case In:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case IsNil:
		Inspect(n.Expr, f)
	case List:
		for _, el := range n.Elems {
			Inspect(el, f)
		}
	case Tuple:
		for _, el := range n.Elems {
			Inspect(el, f)
		}
	}
}

// Exprs returns every top-level expression of q that the compiler reads:
// where clauses, the select clause and order expressions, in that order.
func (q Query) Exprs() []Expr {
	exprs := make([]Expr, 0, len(q.Wheres)+1+len(q.OrderBys))
	exprs = append(exprs, q.Wheres...)
	if q.Select != nil {
		exprs = append(exprs, q.Select)
	}
	for _, o := range q.OrderBys {
		exprs = append(exprs, o.Expr)
	}
	return exprs
}
