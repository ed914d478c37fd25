package querydoc

import "github.com/roach88/docq/internal/ir"

// Options carries the pagination of a compiled query. Zero means no limit
// and no skip.
type Options struct {
	Limit int64
	Skip  int64
}

// BuildOptions resolves the limit and offset of a query. Absent values
// default to zero.
func BuildOptions(limit, offset *int64) Options {
	var opts Options
	if limit != nil {
		opts.Limit = *limit
	}
	if offset != nil {
		opts.Skip = *offset
	}
	return opts
}

// Document renders the options as {limit, skip}.
func (o Options) Document() ir.IRDocument {
	return ir.IRDocument{
		ir.E("limit", ir.IRInt(o.Limit)),
		ir.E("skip", ir.IRInt(o.Skip)),
	}
}
