package querydoc

import (
	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/queryir"
)

// DefaultPrimaryKey is the primary key field assumed for entities that do
// not declare one.
const DefaultPrimaryKey = "id"

// idField is the document store's identifier field.
const idField = "_id"

// From is the resolved source of a query: the collection to read and, when
// the query targets a declared entity, that entity and its primary key.
type From struct {
	Collection string
	Entity     *queryir.Entity // nil for schemaless queries
	PrimaryKey string          // "" when Entity is nil
}

// ResolveSource resolves the source of a query.
func ResolveSource(src queryir.Source) From {
	from := From{Collection: src.Collection}
	if src.Entity == nil {
		return from
	}
	from.Entity = src.Entity
	from.PrimaryKey = src.Entity.PrimaryKey
	if from.PrimaryKey == "" {
		from.PrimaryKey = DefaultPrimaryKey
	}
	return from
}

// HasEntity reports whether the source is bound to a declared entity.
func (f From) HasEntity() bool {
	return f.Entity != nil
}

// FieldName returns the stored name of a field. The entity's primary key is
// stored as _id; every other field keeps its name.
func (f From) FieldName(field queryir.Field) string {
	if f.Entity != nil && field.Name == f.PrimaryKey {
		return idField
	}
	return field.Name
}

// Document renders the source as {collection, entity, primary_key}.
// Absent entity and primary key render as null.
func (f From) Document() ir.IRDocument {
	doc := ir.IRDocument{ir.E("collection", ir.IRString(f.Collection))}
	if f.Entity == nil {
		return append(doc, ir.E("entity", ir.IRNull{}), ir.E("primary_key", ir.IRNull{}))
	}
	return append(doc,
		ir.E("entity", ir.IRString(f.Entity.Name)),
		ir.E("primary_key", ir.IRString(f.PrimaryKey)),
	)
}
