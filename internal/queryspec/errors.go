package queryspec

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// ParseError reports a malformed query definition. Path locates the
// offending node inside the query, e.g. "where[0][1]".
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func parseErrorf(path, format string, args ...any) *ParseError {
	return &ParseError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// LoadError is a failure to load a query file, with the source position
// when one is known.
type LoadError struct {
	Query   string // Name of the offending query, if any
	Message string
	Pos     token.Pos
	Err     error // Underlying error, if any
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Query != "" {
		msg = fmt.Sprintf("query %q: %s", e.Query, msg)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// formatCUEError extracts the first error and its position from a CUE error.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Message: err.Error(), Err: err}
	}

	first := errs[0]
	loadErr := &LoadError{Message: first.Error(), Err: err}
	if positions := errors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
