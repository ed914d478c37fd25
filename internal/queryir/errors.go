package queryir

import (
	"errors"
	"fmt"
)

// Error kinds. Each is a distinct, reportable failure; callers match them
// with errors.Is.
var (
	ErrUnsupportedLock          = errors.New("lock hints are not supported")
	ErrUnsupportedFragment      = errors.New("raw fragments are not supported")
	ErrUnsupportedDistinct      = errors.New("distinct is not supported")
	ErrUnsupportedGroupBy       = errors.New("group_by is not supported")
	ErrUnsupportedHaving        = errors.New("having is not supported")
	ErrUnsupportedJoin          = errors.New("joins are not supported")
	ErrInvalidMembershipOperand = errors.New("invalid membership operand")
	ErrUnrecognizedExpression   = errors.New("unrecognized expression")
	ErrUnsupportedLiteral       = errors.New("unsupported literal")
)

// kindNames maps each kind to its stable snake_case name.
var kindNames = []struct {
	kind error
	name string
}{
	{ErrUnsupportedLock, "unsupported_lock"},
	{ErrUnsupportedFragment, "unsupported_fragment"},
	{ErrUnsupportedDistinct, "unsupported_distinct"},
	{ErrUnsupportedGroupBy, "unsupported_group_by"},
	{ErrUnsupportedHaving, "unsupported_having"},
	{ErrUnsupportedJoin, "unsupported_join"},
	{ErrInvalidMembershipOperand, "invalid_membership_operand"},
	{ErrUnrecognizedExpression, "unrecognized_expression"},
	{ErrUnsupportedLiteral, "unsupported_literal"},
}

// Error is a compilation failure of a specific kind.
type Error struct {
	Kind    error  // One of the Err* kinds
	Message string // Detail about the offending clause
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf creates an Error of the given kind with a formatted message.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindName returns the snake_case name of the error kind carried by err,
// or "" if err carries none.
func KindName(err error) string {
	for _, k := range kindNames {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	return ""
}

// KindNames lists every kind name in declaration order.
func KindNames() []string {
	names := make([]string, len(kindNames))
	for i, k := range kindNames {
		names[i] = k.name
	}
	return names
}
