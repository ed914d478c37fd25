package testutil

import "fmt"

// RunIDSequence generates predictable, sortable run IDs for tests:
// "<prefix>-00000001", "<prefix>-00000002", ...
//
// IDs sort in generation order, like the UUIDv7 IDs used outside tests, so
// "latest run" lookups behave the same.
type RunIDSequence struct {
	prefix string
	clock  *DeterministicClock
}

// NewRunIDSequence creates a sequence. An empty prefix defaults to "run".
func NewRunIDSequence(prefix string) *RunIDSequence {
	if prefix == "" {
		prefix = "run"
	}
	return &RunIDSequence{prefix: prefix, clock: NewDeterministicClock()}
}

// Generate returns the next ID.
func (g *RunIDSequence) Generate() string {
	return fmt.Sprintf("%s-%08d", g.prefix, g.clock.Next())
}

// Reset restarts the sequence so a test can replay the same IDs.
func (g *RunIDSequence) Reset() {
	g.clock.Reset()
}
