package ir

// Version constants for the compiled output format and the compiler.
const (
	// FormatVersion is the compiled document format version.
	FormatVersion = "1"

	// CompilerVersion is the docq compiler version.
	CompilerVersion = "0.1.0"
)
