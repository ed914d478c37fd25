// Package ir provides the literal and document types shared by the query
// representation and the compiled output.
//
// This package imports nothing internal. All other internal packages import
// ir; ir is the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - IRValue is sealed; every literal the store accepts has exactly one type
//   - IRDocument is ordered; key order is part of the value
//   - Canonical JSON (MarshalCanonical) is the only form used for identity
package ir
