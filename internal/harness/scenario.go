package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/docq/internal/queryir"
)

// Scenario defines one compiler conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Query is the query definition, in query file syntax.
	Query map[string]any `yaml:"query"`

	// Expect lists the expected outcome.
	Expect Expect `yaml:"expect"`
}

// Expect holds expected compiler output. Documents are canonical JSON text.
// Error is exclusive with the document fields.
type Expect struct {
	Filter     string `yaml:"filter,omitempty"`
	Projection string `yaml:"projection,omitempty"`
	Options    string `yaml:"options,omitempty"`

	// Error is the expected error kind name, e.g. "unsupported_join".
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by file name.
// Scenario names must be unique.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Query) == 0 {
		return fmt.Errorf("query is required")
	}

	e := s.Expect
	hasDocs := e.Filter != "" || e.Projection != "" || e.Options != ""
	switch {
	case e.Error != "" && hasDocs:
		return fmt.Errorf("expect: error cannot be combined with filter, projection or options")
	case e.Error == "" && !hasDocs:
		return fmt.Errorf("expect: at least one of filter, projection, options or error is required")
	}

	if e.Error != "" && !knownKind(e.Error) {
		return fmt.Errorf("expect.error: unknown error kind %q", e.Error)
	}

	for field, doc := range map[string]string{"filter": e.Filter, "projection": e.Projection, "options": e.Options} {
		if doc != "" && !json.Valid([]byte(doc)) {
			return fmt.Errorf("expect.%s: not valid JSON", field)
		}
	}

	return nil
}

func knownKind(name string) bool {
	for _, k := range queryir.KindNames() {
		if k == name {
			return true
		}
	}
	return false
}
