package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AssertionError describes one expectation that did not hold.
type AssertionError struct {
	Field    string // filter, projection, options or error
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpect checks a result against the expectations of a scenario and
// returns one error per mismatch.
func EvaluateExpect(result *Result, expect Expect) []error {
	var errs []error

	if expect.Error != "" || result.ErrorKind != "" {
		if expect.Error != result.ErrorKind {
			errs = append(errs, &AssertionError{
				Field:    "error",
				Expected: orNone(expect.Error),
				Actual:   orNone(result.ErrorKind),
			})
		}
		return errs
	}

	checks := []struct {
		field    string
		expected string
		actual   string
	}{
		{"filter", expect.Filter, result.Filter},
		{"projection", expect.Projection, result.Projection},
		{"options", expect.Options, result.Options},
	}
	for _, c := range checks {
		if c.expected == "" {
			continue
		}
		if err := assertDocument(c.field, c.expected, c.actual); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// assertDocument compares JSON text after removing insignificant
// whitespace. Key order and number spelling are significant.
func assertDocument(field, expected, actual string) error {
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(expected)); err != nil {
		return &AssertionError{Field: field, Expected: expected, Actual: "invalid expected JSON: " + err.Error()}
	}
	if compact.String() != actual {
		return &AssertionError{Field: field, Expected: compact.String(), Actual: actual}
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
