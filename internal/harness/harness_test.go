package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 8)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	s := &Scenario{
		Name:        "wrong",
		Description: "expectations that do not hold",
		Query: map[string]any{
			"from":  "items",
			"where": []any{[]any{"==", map[string]any{"field": "x"}, 1}},
		},
		Expect: Expect{
			Filter:  `{"x":2}`,
			Options: `{"skip":0,"limit":0}`,
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Assertion failed: filter")
	assert.Contains(t, result.Errors[0], `Actual: {"x":1}`)
	assert.Contains(t, result.Errors[1], "Assertion failed: options")
}

func TestRun_UnexpectedError(t *testing.T) {
	s := &Scenario{
		Name:        "locked",
		Description: "lock hints are rejected",
		Query:       map[string]any{"from": "items", "lock": "FOR UPDATE"},
		Expect:      Expect{Filter: `{}`},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "unsupported_lock", result.ErrorKind)
	assert.Contains(t, result.Errors[0], "Expected: (none)")
}

func TestRun_MissingExpectedError(t *testing.T) {
	s := &Scenario{
		Name:        "fine",
		Description: "compiles fine",
		Query:       map[string]any{"from": "items"},
		Expect:      Expect{Error: "unsupported_join"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "Actual: (none)")
}

func TestRun_MalformedQuery(t *testing.T) {
	s := &Scenario{
		Name:        "malformed",
		Description: "query without a source",
		Query:       map[string]any{"where": []any{}},
		Expect:      Expect{Filter: `{}`},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")
}

func TestRun_FillsOutput(t *testing.T) {
	s := &Scenario{
		Name:        "output",
		Description: "all output fields are filled",
		Query:       map[string]any{"from": "items", "limit": 2},
		Expect:      Expect{Options: `{"limit":2,"skip":0}`},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, `{}`, result.Filter)
	assert.Equal(t, `{}`, result.Projection)
	assert.Len(t, result.Hash, 64)
	assert.Contains(t, result.Output, `"options":{"limit":2,"skip":0}`)
}

func TestHarness_Logs(t *testing.T) {
	var buf bytes.Buffer
	h := New(WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	_, err := h.Run(&Scenario{
		Name:        "logged",
		Description: "d",
		Query:       map[string]any{"from": "items"},
		Expect:      Expect{Filter: `{}`},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "scenario=logged")
	assert.Contains(t, buf.String(), "pass=true")
}

func TestSnapshot(t *testing.T) {
	ok, err := Snapshot("s", &Result{Output: `{"a":1}`})
	require.NoError(t, err)
	assert.Equal(t, `{"scenario":"s","compiled":{"a":1}}`, string(ok))

	failed, err := Snapshot("s", &Result{ErrorKind: "unsupported_lock"})
	require.NoError(t, err)
	assert.Equal(t, `{"scenario":"s","error":"unsupported_lock"}`, string(failed))
}
