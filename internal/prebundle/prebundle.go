// Package prebundle drives the per-file transform pipeline of a dependency
// prebundling pass: read, optional preprocess, optional dynamic option
// resolution, compile. Each invocation records a chronologically ordered
// stage trace that the stats aggregator consumes after the run ends.
package prebundle

import (
	"context"
	"encoding/base64"
)

// CompileOptions is the option set handed to the compiler collaborator.
// The runner stamps Filename and otherwise treats the options as opaque.
type CompileOptions struct {
	Filename   string
	Generate   string
	Dev        bool
	Hydratable bool
}

// Compiled is the compiler collaborator's output for one file. Map holds the
// serialized source map, empty when the compiler produced none.
type Compiled struct {
	Code string
	Map  string
}

// Compiler turns component source into executable module code. The call is
// synchronous and may return a *CompileError.
type Compiler interface {
	Compile(source string, options CompileOptions) (Compiled, error)
}

// Preprocessed is the preprocessor collaborator's output for one file.
type Preprocessed struct {
	Code string
	Map  string
}

// Preprocessor transforms component source ahead of compilation. Configured
// optionally; a nil Preprocessor on the Runner skips the stage entirely.
type Preprocessor interface {
	Preprocess(ctx context.Context, source, filename string) (Preprocessed, error)
}

// OptionResolver computes a possibly merged per-file option set ahead of the
// compile call. Its cost carries no markers of its own and lands in the
// interval before compileStart.
type OptionResolver interface {
	Resolve(ctx context.Context, path string, base CompileOptions) (CompileOptions, error)
}

// sourceMapPrefix is the data URL prefix for inline source maps.
const sourceMapPrefix = "data:application/json;charset=utf-8;base64,"

// SourceMapURL encodes a serialized source map as an inline data URL.
func SourceMapURL(serialized string) string {
	return sourceMapPrefix + base64.StdEncoding.EncodeToString([]byte(serialized))
}
