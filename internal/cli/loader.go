package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/docq/internal/queryir"
	"github.com/roach88/docq/internal/queryspec"
)

// Error code constants, shared by every command.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScenarioLoad = "E002" // Scenario file or directory could not be loaded
	ErrCodeNoQueries    = "E003" // Query file holds no queries
	ErrCodeFormat       = "E004" // Unsupported query file format
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeSchema       = "E006" // Query file failed to parse or violates the schema
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeInvalidQuery = "E008" // Malformed query definition or duplicate name
	ErrCodeDatabase     = "E009" // Database open/read/write error
	ErrCodeRunNotFound  = "E010" // Recorded run not found

	// Compiler rejections, one per error kind.
	ErrCodeUnsupportedLock          = "E201"
	ErrCodeUnsupportedFragment      = "E202"
	ErrCodeUnsupportedDistinct      = "E203"
	ErrCodeUnsupportedGroupBy       = "E204"
	ErrCodeUnsupportedHaving        = "E205"
	ErrCodeUnsupportedJoin          = "E206"
	ErrCodeInvalidMembershipOperand = "E210"
	ErrCodeUnrecognizedExpression   = "E211"
	ErrCodeUnsupportedLiteral       = "E212"
)

var kindCodes = map[string]string{
	"unsupported_lock":           ErrCodeUnsupportedLock,
	"unsupported_fragment":       ErrCodeUnsupportedFragment,
	"unsupported_distinct":       ErrCodeUnsupportedDistinct,
	"unsupported_group_by":       ErrCodeUnsupportedGroupBy,
	"unsupported_having":         ErrCodeUnsupportedHaving,
	"unsupported_join":           ErrCodeUnsupportedJoin,
	"invalid_membership_operand": ErrCodeInvalidMembershipOperand,
	"unrecognized_expression":    ErrCodeUnrecognizedExpression,
	"unsupported_literal":        ErrCodeUnsupportedLiteral,
}

// CodeForKind maps a compiler error kind name to its error code.
func CodeForKind(kind string) string {
	if code, ok := kindCodes[kind]; ok {
		return code
	}
	return ErrCodeGeneric
}

// CodeForError maps a compiler error to its error code.
func CodeForError(err error) string {
	return CodeForKind(queryir.KindName(err))
}

// LoadError is a query file that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadQueries loads a query file and classifies any failure with an error
// code.
func LoadQueries(path string) ([]queryspec.Named, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing query file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}
	}

	queries, err := queryspec.LoadFile(path)
	if err != nil {
		return nil, convertLoadError(err)
	}
	return queries, nil
}

// convertLoadError converts a queryspec error to a LoadError with position info.
func convertLoadError(err error) *LoadError {
	var specErr *queryspec.LoadError
	if !errors.As(err, &specErr) {
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	loadErr := &LoadError{Message: specErr.Message, Pos: specErr.Pos}
	if specErr.Query != "" {
		loadErr.Message = fmt.Sprintf("query %q: %s", specErr.Query, specErr.Message)
	}

	var parseErr *queryspec.ParseError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		loadErr.Code = ErrCodeNotFound
	case errors.Is(err, queryspec.ErrNoQueries):
		loadErr.Code = ErrCodeNoQueries
	case errors.Is(err, queryspec.ErrUnsupportedFormat):
		loadErr.Code = ErrCodeFormat
	case errors.Is(err, queryspec.ErrDuplicateName), errors.As(err, &parseErr):
		loadErr.Code = ErrCodeInvalidQuery
	default:
		loadErr.Code = ErrCodeSchema
	}
	return loadErr
}

// loadFailure prints a load error and returns a command-level ExitError.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if !f.JSON() && loadErr.Pos.IsValid() {
			fmt.Fprintf(f.Writer, "%s:%d:%d\n", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		return fail(f, ExitCommandError, loadErr.Code, loadErr.Message)
	}
	return fail(f, ExitCommandError, ErrCodeGeneric, err.Error())
}
