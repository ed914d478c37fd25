package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/docq/internal/ir"
)

// Snapshot renders a result as the canonical golden document:
// {"scenario": name, "compiled": {...}} or {"scenario": name, "error": kind}.
func Snapshot(name string, result *Result) ([]byte, error) {
	doc := ir.IRDocument{ir.E("scenario", ir.IRString(name))}
	if result.ErrorKind != "" {
		doc = append(doc, ir.E("error", ir.IRString(result.ErrorKind)))
		return ir.MarshalCanonical(doc)
	}

	// Output is already canonical; splice it in rather than re-encoding.
	head, err := ir.MarshalCanonical(doc)
	if err != nil {
		return nil, err
	}
	out := append(head[:len(head)-1], `,"compiled":`...)
	out = append(out, result.Output...)
	return append(out, '}'), nil
}

// RunWithGolden executes a scenario and compares the compiled document
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
