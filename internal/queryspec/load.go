package queryspec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/docq/internal/queryir"
)

//go:embed schema.cue
var schemaSource []byte

// Load failures callers may need to tell apart.
var (
	ErrNoQueries         = errors.New("no queries found")
	ErrDuplicateName     = errors.New("duplicate query name")
	ErrUnsupportedFormat = errors.New("unsupported query file format")
)

// Named is one query loaded from a file.
type Named struct {
	Name   string
	Source map[string]any // Decoded definition, as written
	Query  queryir.Query
	Pos    token.Pos
}

// LoadFile loads every query of a .cue, .json, .yaml or .yml file.
func LoadFile(path string) ([]Named, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("reading query file: %v", err), Err: err}
	}
	return LoadBytes(path, data)
}

// LoadBytes loads queries from file contents. The filename selects the
// format by extension and is used in positions.
//
// The file is validated against the query file schema before any query is
// parsed, so structural mistakes are reported with their CUE position.
func LoadBytes(filename string, data []byte) ([]Named, error) {
	ctx := cuecontext.New()

	var value cue.Value
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		f, err := cueyaml.Extract(filename, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		value = ctx.BuildFile(f)
	case ".cue", ".json":
		value = ctx.CompileBytes(data, cue.Filename(filename))
	default:
		return nil, &LoadError{Message: fmt.Sprintf("unsupported query file extension %q", ext), Err: ErrUnsupportedFormat}
	}
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("query file schema: %w", err)
	}

	file := schema.LookupPath(cue.ParsePath("#File")).Unify(value)
	if err := file.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := file.LookupPath(cue.ParsePath("queries")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var queries []Named
	seen := make(map[string]bool)
	for i := 0; iter.Next(); i++ {
		item := iter.Value()
		// Positions come from the file itself, not the schema it was unified with.
		pos := value.LookupPath(cue.MakePath(cue.Str("queries"), cue.Index(i))).Pos()

		name, err := item.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if seen[name] {
			return nil, &LoadError{Query: name, Message: ErrDuplicateName.Error(), Pos: pos, Err: ErrDuplicateName}
		}
		seen[name] = true

		source, err := decodeDefinition(item)
		if err != nil {
			return nil, &LoadError{Query: name, Message: err.Error(), Pos: pos, Err: err}
		}

		q, err := Parse(source)
		if err != nil {
			return nil, &LoadError{Query: name, Message: err.Error(), Pos: pos, Err: err}
		}

		queries = append(queries, Named{Name: name, Source: source, Query: q, Pos: pos})
	}

	if len(queries) == 0 {
		return nil, &LoadError{Message: fmt.Sprintf("no queries found in %s", filename), Err: ErrNoQueries}
	}
	return queries, nil
}

// decodeDefinition exports a CUE value to plain Go data. Numbers stay
// json.Number so integers and floats keep their written form.
func decodeDefinition(v cue.Value) (map[string]any, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("exporting query: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding query: %w", err)
	}
	return m, nil
}
