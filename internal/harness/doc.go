// Package harness runs compiler conformance scenarios.
//
// A scenario is a YAML file holding one query definition and the documents
// the compiler must produce for it:
//
//	name: equality_and_inequality
//	description: direct comparisons merge into one filter document
//	query:
//	  from: items
//	  where:
//	    - ["==", {field: x}, 42]
//	expect:
//	  filter: '{"x":42}'
//
// Expected documents are canonical JSON text and are compared byte for byte
// after whitespace is removed, so key order is checked. A scenario may
// instead expect an error kind (e.g. unsupported_join).
//
// RunWithGolden additionally snapshots the whole compiled document into
// testdata/golden/<name>.golden. Regenerate snapshots with:
//
//	go test ./internal/harness -update
package harness
