package queryir

// Validate checks that a query stays inside the shape a document store can
// express. It fails fast: the first unsupported feature found is returned as
// an *Error of the matching kind.
//
// Checks, in order:
//  1. Lock hints
//  2. Raw fragments in where, select or order clauses
//  3. Distinct
//  4. Group by
//  5. Having
//  6. Joins, including fields bound to a joined source
//
// Validate is a pure function with no side effects.
func Validate(q Query) error {
	v := &validator{query: q}
	return v.validate()
}

// validator holds the query under validation.
type validator struct {
	query Query
}

func (v *validator) validate() error {
	checks := []func() error{
		v.checkLock,
		v.checkFragments,
		v.checkDistinct,
		v.checkGroupBy,
		v.checkHaving,
		v.checkJoins,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) checkLock() error {
	if v.query.Lock != "" {
		return Errorf(ErrUnsupportedLock, "lock %q", v.query.Lock)
	}
	return nil
}

func (v *validator) checkFragments() error {
	var found *Fragment
	for _, e := range v.query.Exprs() {
		Inspect(e, func(n Expr) bool {
			if frag, ok := n.(Fragment); ok && found == nil {
				found = &frag
			}
			return found == nil
		})
		if found != nil {
			return Errorf(ErrUnsupportedFragment, "fragment %q", found.Text)
		}
	}
	return nil
}

func (v *validator) checkDistinct() error {
	if v.query.Distinct {
		return &Error{Kind: ErrUnsupportedDistinct}
	}
	return nil
}

func (v *validator) checkGroupBy() error {
	if len(v.query.GroupBy) > 0 {
		return Errorf(ErrUnsupportedGroupBy, "%d group_by expression(s)", len(v.query.GroupBy))
	}
	return nil
}

func (v *validator) checkHaving() error {
	if len(v.query.Having) > 0 {
		return Errorf(ErrUnsupportedHaving, "%d having expression(s)", len(v.query.Having))
	}
	return nil
}

func (v *validator) checkJoins() error {
	if len(v.query.Joins) > 0 {
		return Errorf(ErrUnsupportedJoin, "join on %q", v.query.Joins[0].Source.Collection)
	}

	var bad *Field
	for _, e := range v.query.Exprs() {
		Inspect(e, func(n Expr) bool {
			if f, ok := n.(Field); ok && f.Binding != 0 && bad == nil {
				bad = &f
			}
			return bad == nil
		})
		if bad != nil {
			return Errorf(ErrUnsupportedJoin, "field %q refers to source %d", bad.Name, bad.Binding)
		}
	}
	return nil
}
