package prebundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mfreed420/vite-plugin-svelte/internal/stage"
)

// tracerName is the default OTel tracer name for pipeline spans.
const tracerName = "vite-plugin-svelte"

// Result is the transformed module source for a successfully compiled file.
// Contents carries the trailing sourceMappingURL directive; its string shape
// is a compatibility contract with the host's module loader. Events is the
// file's recorded stage trace, the same sequence appended to the run.
type Result struct {
	Contents string
	Events   []stage.Event
}

// Runner executes the transform pipeline for the files of one prebundling
// pass. Many files are processed concurrently; each invocation owns a private
// trace until the single append to the run.
type Runner struct {
	Compiler     Compiler
	Preprocessor Preprocessor   // nil skips the preprocess stage entirely.
	Resolver     OptionResolver // nil skips dynamic option resolution.
	Options      CompileOptions

	// Tracer emits one span per processed file. When nil, falls back to
	// otel.Tracer(tracerName).
	Tracer trace.Tracer

	// Clock supplies stage timestamps. When nil, the process monotonic
	// clock is used.
	Clock stage.Clock

	// ReadFile is the file read seam. When nil, os.ReadFile is used.
	ReadFile func(path string) ([]byte, error)

	Logger *slog.Logger
}

func (r *Runner) clock() stage.Clock {
	if r.Clock != nil {
		return r.Clock
	}

	return stage.Now
}

func (r *Runner) readFile(path string) ([]byte, error) {
	if r.ReadFile != nil {
		return r.ReadFile(path)
	}

	return os.ReadFile(path)
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer != nil {
		return r.Tracer
	}

	return otel.Tracer(tracerName)
}

// Process runs one file through the pipeline and appends its record to run.
// On failure no record is appended and the error describes the failing stage;
// the caller converts it to a host diagnostic via ToDiagnostic.
func (r *Runner) Process(ctx context.Context, run *Run, path string) (Result, error) {
	fileTrace := stage.NewTraceWithClock(r.clock())
	fileTrace.Mark(stage.Start)

	raw, readErr := r.readFile(path)
	if readErr != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, readErr)
	}

	fileTrace.Mark(stage.Read)

	source := string(raw)

	if r.Preprocessor != nil {
		fileTrace.Mark(stage.PreprocessedStart)

		preprocessed, ppErr := r.Preprocessor.Preprocess(ctx, source, path)
		if ppErr != nil {
			return Result{}, preprocessError(path, ppErr)
		}

		fileTrace.Mark(stage.Preprocessed)

		source = preprocessed.Code
	}

	options := r.Options
	options.Filename = path

	if r.Resolver != nil {
		resolved, resolveErr := r.Resolver.Resolve(ctx, path, options)
		if resolveErr != nil {
			return Result{}, fmt.Errorf("resolve options for %s: %w", path, resolveErr)
		}

		options = resolved
	}

	fileTrace.Mark(stage.CompileStart)

	compiled, compileErr := r.Compiler.Compile(source, options)
	if compileErr != nil {
		return Result{}, compileErr
	}

	fileTrace.Mark(stage.Compiled)
	fileTrace.Mark(stage.End)

	run.append(Record{Path: path, Events: fileTrace.Events()})

	// Span emission happens after the trailing mark so tracing overhead
	// never lands inside a measured interval.
	r.emitFileSpan(ctx, path, fileTrace)

	if r.Logger != nil {
		total, _ := fileTrace.Duration(stage.End)
		r.Logger.DebugContext(ctx, "prebundle: compiled", "file", path, "total_ms", total)
	}

	return Result{
		Contents: compiled.Code + "\n//# sourceMappingURL=" + SourceMapURL(compiled.Map),
		Events:   fileTrace.Events(),
	}, nil
}

// emitFileSpan creates a backdated span covering the file's full pipeline,
// with per-stage durations as attributes.
func (r *Runner) emitFileSpan(ctx context.Context, path string, fileTrace *stage.Trace) {
	total, ok := fileTrace.Duration(stage.End)
	if !ok {
		return
	}

	now := time.Now()

	attrs := []attribute.KeyValue{attribute.String("file.path", path)}

	for _, marker := range []stage.Marker{stage.Read, stage.Preprocessed, stage.Compiled} {
		if d, found := fileTrace.Duration(marker); found {
			attrs = append(attrs, attribute.Float64("stage."+string(marker)+"_ms", d))
		}
	}

	_, span := r.tracer().Start(ctx, "prebundle.file",
		trace.WithTimestamp(now.Add(-time.Duration(total*float64(time.Millisecond)))),
		trace.WithAttributes(attrs...))
	span.End(trace.WithTimestamp(now))
}
