// Package queryspec reads declarative query files and turns each query into
// a queryir.Query.
//
// A query file holds a list of named queries:
//
//	queries: [{
//		name: "active_users"
//		from: {collection: "users", entity: {name: "User"}}
//		where: [["==", {field: "active"}, true]]
//		order_by: [["desc", {field: "created"}]]
//		limit: 10
//	}]
//
// CUE, JSON and YAML files are accepted. Every file is unified with the
// schema in schema.cue before any query is parsed.
package queryspec
