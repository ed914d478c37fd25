package harness

// Result is the outcome of running a scenario.
type Result struct {
	// Pass indicates every expectation matched.
	Pass bool `json:"pass"`

	// Compiled output, as canonical JSON. Empty when compilation failed.
	Output     string `json:"output,omitempty"`
	Filter     string `json:"filter,omitempty"`
	Projection string `json:"projection,omitempty"`
	Options    string `json:"options,omitempty"`
	Hash       string `json:"hash,omitempty"`

	// ErrorKind is set when the compiler rejected the query.
	ErrorKind string `json:"error_kind,omitempty"`

	// Errors contains mismatch descriptions. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
