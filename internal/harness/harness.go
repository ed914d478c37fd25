package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/docq/internal/ir"
	"github.com/roach88/docq/internal/querydoc"
	"github.com/roach88/docq/internal/queryir"
	"github.com/roach88/docq/internal/queryspec"
)

// Harness runs scenarios against the compiler.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run compiles the scenario's query and checks the expectations.
//
// Compiler rejections are results, not errors: they are compared with the
// expected error kind. An error is returned only when the query definition
// itself is malformed or the compiler fails in an unclassified way.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	q, err := queryspec.Parse(scenario.Query)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: invalid query: %w", scenario.Name, err)
	}

	result := NewResult()
	compiled, err := querydoc.Compile(q)
	if err != nil {
		kind := queryir.KindName(err)
		if kind == "" {
			return nil, fmt.Errorf("scenario %s: compile: %w", scenario.Name, err)
		}
		result.ErrorKind = kind
	} else if err := fillOutput(result, compiled); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	for _, e := range EvaluateExpect(result, scenario.Expect) {
		result.AddError(e.Error())
	}

	h.logger.Debug("scenario evaluated",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"error_kind", result.ErrorKind,
	)
	return result, nil
}

func fillOutput(r *Result, c *querydoc.Compiled) error {
	parts := []struct {
		dst *string
		v   ir.IRValue
	}{
		{&r.Filter, c.Filter},
		{&r.Projection, c.Projection},
		{&r.Options, c.Options.Document()},
		{&r.Output, c.Document()},
	}
	for _, p := range parts {
		b, err := ir.MarshalCanonical(p.v)
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		*p.dst = string(b)
	}

	hash, err := c.Hash()
	if err != nil {
		return fmt.Errorf("hash output: %w", err)
	}
	r.Hash = hash
	return nil
}
