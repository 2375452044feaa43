package prebundle

import (
	"errors"
	"fmt"
)

// CompileError is the structured error a compiler collaborator may return.
// Line and Column are one-based; zero means unknown.
type CompileError struct {
	Message string
	File    string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	return e.Message
}

// Diagnostic is the host diagnostics-channel shape for a failed file. A
// failed file yields one of these instead of transformed output; it never
// aborts other in-flight files or the run.
type Diagnostic struct {
	Text   string
	File   string
	Line   int
	Column int
}

// ToDiagnostic converts a pipeline failure into the host diagnostic shape,
// preserving the compiler's reported location when one is available.
func ToDiagnostic(err error, path string) Diagnostic {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		file := compileErr.File
		if file == "" {
			file = path
		}

		return Diagnostic{
			Text:   compileErr.Message,
			File:   file,
			Line:   compileErr.Line,
			Column: compileErr.Column,
		}
	}

	return Diagnostic{Text: err.Error(), File: path}
}

// preprocessError annotates a preprocessor rejection with the file path and
// stage context so the diagnostic is actionable without the trace. The
// message shape is a compatibility contract.
func preprocessError(path string, err error) error {
	return fmt.Errorf("Error while preprocessing %s - %w", path, err)
}
