// Package querydoc compiles normalized queries into the filter, projection
// and options documents understood by document stores.
//
// The compiler is split by clause:
//
//	ResolveSource    source  -> From
//	exprCompiler     wheres  -> filter document
//	BuildProjection  select  -> projection
//	BuildSort        orders  -> sort document (wrapped by Envelope)
//	BuildOptions     limit/offset -> Options
//
// Compile runs them in that order after queryir.Validate and assembles the
// Compiled record.
//
// FILTER SHAPE:
//
// Direct field comparisons merge into one flat document:
//
//	x == 42 and y != 43   ->  {"x": 42, "y": {"$ne": 43}}
//
// Anything else at the top level is wrapped in $and. Nested connectives are
// binary and keep their tree shape:
//
//	a == 1 or (b == 2 and c == 3)
//	  -> {"$or": [{"a": 1}, {"$and": [{"b": 2}, {"c": 3}]}]}
//
// Negated equality, null test and membership stay attached to their field
// ($neq, $neq null, $nin). Every other negation becomes {"$not": ...}.
//
// All functions here are pure. Errors are *queryir.Error values whose kind
// is matched with errors.Is.
package querydoc
