package store

// Run is one invocation of `docq record`: a batch of compilations of the
// queries in one file.
type Run struct {
	ID              string // UUIDv7
	SourceFile      string
	CompilerVersion string
	FormatVersion   string
}

// Compilation is the recorded outcome of compiling one query.
// Exactly one of Output or ErrorKind is set.
type Compilation struct {
	RunID      string
	Seq        int64 // 1-based position in the run
	Name       string
	SourceID   string
	Source     string // Canonical JSON query definition
	Output     string // Canonical JSON compiled document
	OutputHash string
	ErrorKind  string
}

// Failed reports whether the compilation was rejected.
func (c Compilation) Failed() bool {
	return c.ErrorKind != ""
}
