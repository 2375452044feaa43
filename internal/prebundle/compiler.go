package prebundle

import (
	"context"
	"fmt"
	"path/filepath"
)

// PassthroughCompiler hands source through unchanged with a minimal source
// map. The standalone CLI host uses it to measure pipeline and grouping
// behavior without a real component compiler attached.
type PassthroughCompiler struct{}

// Compile implements Compiler.
func (PassthroughCompiler) Compile(source string, options CompileOptions) (Compiled, error) {
	serialized := fmt.Sprintf(`{"version":3,"file":%q,"sources":[%q],"mappings":""}`,
		filepath.Base(options.Filename), options.Filename)

	return Compiled{Code: source, Map: serialized}, nil
}

// IdentityPreprocessor returns source unchanged. It lets a host exercise the
// preprocess stage markers without a configured preprocessor chain.
type IdentityPreprocessor struct{}

// Preprocess implements Preprocessor.
func (IdentityPreprocessor) Preprocess(_ context.Context, source, _ string) (Preprocessed, error) {
	return Preprocessed{Code: source}, nil
}
