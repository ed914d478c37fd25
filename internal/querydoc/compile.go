package querydoc

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/queryir"
)

// Compiled is the result of compiling one query: everything a document store
// driver needs to run a find.
type Compiled struct {
	From       From
	Filter     ir.IRDocument
	Projection ir.IRValue // IRDocument with an entity, IRArray otherwise
	Options    Options
}

// Compile translates a normalized query into its document-store form.
//
// The query is validated first; unsupported features fail before any
// expression is compiled. When the query has order expressions the filter is
// wrapped in the {"$query", "$orderby"} envelope.
//
// Compile is a pure function: the same query always yields a byte-identical
// result, and it is safe for concurrent use.
func Compile(q queryir.Query) (*Compiled, error) {
	if err := queryir.Validate(q); err != nil {
		return nil, err
	}

	from := ResolveSource(q.Source)
	exprs := &exprCompiler{from: from}

	filter, err := exprs.filter(q.Wheres)
	if err != nil {
		return nil, err
	}

	projection, err := BuildProjection(q.Select, from)
	if err != nil {
		return nil, err
	}

	sort, err := BuildSort(q.OrderBys, from)
	if err != nil {
		return nil, err
	}

	return &Compiled{
		From:       from,
		Filter:     Envelope(filter, sort),
		Projection: projection,
		Options:    BuildOptions(q.Limit, q.Offset),
	}, nil
}

// Document renders the result as {from, filter, projection, options}.
func (c *Compiled) Document() ir.IRDocument {
	return ir.IRDocument{
		ir.E("from", c.From.Document()),
		ir.E("filter", c.Filter),
		ir.E("projection", c.Projection),
		ir.E("options", c.Options.Document()),
	}
}

// MarshalJSON emits the canonical JSON form of Document.
func (c *Compiled) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(c.Document())
}

// Hash returns the content hash of the compiled document.
func (c *Compiled) Hash() (string, error) {
	return ir.OutputHash(c.Document())
}

// BSON returns the compiled document as an ordered bson.D, ready for the
// MongoDB driver.
func (c *Compiled) BSON() (bson.D, error) {
	d, err := ir.DocumentToBSON(c.Document())
	if err != nil {
		return nil, fmt.Errorf("compiled query to bson: %w", err)
	}
	return d, nil
}
