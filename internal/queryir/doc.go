// Package queryir provides the normalized query representation consumed by
// the document compiler.
//
// ARCHITECTURE:
//
// The query IR sits between the query-building front end and the document
// compiler:
//
//	[query builder + planner] → [Query IR] → [querydoc] → [storage driver]
//
// The front end has already resolved every parameter to a literal value, so
// the IR carries no free variables. Param nodes keep their source index only
// for error reporting.
//
// SEALED INTERFACES:
//
// Expr is a sealed interface using the marker method pattern. Only types in
// this package implement it, which lets the compiler switch exhaustively
// over node kinds:
//
//	switch e := expr.(type) {
//	case queryir.Compare:
//	    // Handle comparison
//	case queryir.And:
//	    // Handle conjunction
//	default:
//	    // Upstream contract violation
//	}
//
// SUPPORTED SUBSET:
//
// Document stores have no joins, grouping, having clauses, distinct or lock
// hints. Queries using any of them are representable here but rejected by
// Validate with a dedicated error kind each, so callers can report which
// feature was used.
package queryir
