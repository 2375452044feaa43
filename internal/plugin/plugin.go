// Package plugin wires the prebundle pipeline and the stats aggregator
// behind the host build tool's run-start, load, and run-end hooks.
package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mfreed420/vite-plugin-svelte/internal/observability"
	"github.com/mfreed420/vite-plugin-svelte/internal/prebundle"
	"github.com/mfreed420/vite-plugin-svelte/internal/stage"
	"github.com/mfreed420/vite-plugin-svelte/internal/stats"
)

// LoadResult is the load hook's outcome: transformed contents on success,
// diagnostics on failure, never both.
type LoadResult struct {
	Contents    string
	Diagnostics []prebundle.Diagnostic
}

// Options configures a Plugin.
type Options struct {
	// Extensions is the matched extension set, entries like ".svelte".
	Extensions []string

	Runner     *prebundle.Runner
	Aggregator *stats.Aggregator

	// Metrics is optional; nil disables instrument updates.
	Metrics *observability.Metrics

	Logger *slog.Logger

	// Sink receives the rendered report as plain text. Defaults to stdout.
	Sink func(text string)

	// PlotOutput, when set, is the HTML plot path written at run end.
	PlotOutput string

	// Clock stamps the run start. Defaults to the process monotonic clock.
	Clock stage.Clock
}

// Plugin implements the host-facing hooks of the instrumentation layer.
type Plugin struct {
	exts       map[string]struct{}
	runner     *prebundle.Runner
	aggregator *stats.Aggregator
	metrics    *observability.Metrics
	logger     *slog.Logger
	sink       func(string)
	plotOutput string
	clock      stage.Clock

	mu  sync.Mutex
	run *prebundle.Run
}

// New creates a Plugin from opts.
func New(opts Options) *Plugin {
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	sink := opts.Sink
	if sink == nil {
		sink = func(text string) { fmt.Fprintln(os.Stdout, text) }
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clock := opts.Clock
	if clock == nil {
		clock = stage.Now
	}

	return &Plugin{
		exts:       exts,
		runner:     opts.Runner,
		aggregator: opts.Aggregator,
		metrics:    opts.Metrics,
		logger:     logger,
		sink:       sink,
		plotOutput: opts.PlotOutput,
		clock:      clock,
	}
}

// Matches reports whether path belongs to the configured extension set.
func (p *Plugin) Matches(path string) bool {
	_, ok := p.exts[strings.ToLower(filepath.Ext(path))]

	return ok
}

// OnStart begins a new run. The host guarantees it happens-before any load
// of that run, so the swap needs no coordination with in-flight files.
func (p *Plugin) OnStart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.run = prebundle.NewRunWithClock(p.clock)
	p.logger.Debug("prebundle: run started")
}

func (p *Plugin) currentRun() *prebundle.Run {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.run == nil {
		p.run = prebundle.NewRunWithClock(p.clock)
	}

	return p.run
}

// OnLoad processes one matched file through the pipeline. Failures yield
// diagnostics and never abort other in-flight files.
func (p *Plugin) OnLoad(ctx context.Context, path string) LoadResult {
	if !p.Matches(path) {
		return LoadResult{}
	}

	result, err := p.runner.Process(ctx, p.currentRun(), path)
	if err != nil {
		if p.metrics != nil {
			p.metrics.FileFailed()
		}

		p.logger.WarnContext(ctx, "prebundle: file failed", "file", path, "error", err)

		return LoadResult{Diagnostics: []prebundle.Diagnostic{prebundle.ToDiagnostic(err, path)}}
	}

	p.recordMetrics(result.Events)

	return LoadResult{Contents: result.Contents}
}

func (p *Plugin) recordMetrics(events []stage.Event) {
	if p.metrics == nil {
		return
	}

	p.metrics.FileCompiled()

	fileTrace := stage.FromEvents(events)

	for _, marker := range []stage.Marker{stage.Read, stage.Preprocessed, stage.Compiled, stage.End} {
		if d, ok := fileTrace.Duration(marker); ok {
			p.metrics.ObserveStage(string(marker), d)
		}
	}
}

// OnEnd renders and emits the run report, then writes the optional plot
// page. Reporting is best-effort; no failure here is surfaced to the host.
func (p *Plugin) OnEnd(ctx context.Context) {
	run := p.currentRun()

	report := p.aggregator.Report(ctx, run)
	if report != "" {
		p.sink(report)
	}

	if p.plotOutput == "" {
		return
	}

	records := run.Records()
	if len(records) < 2 {
		return
	}

	groups := p.aggregator.Aggregate(ctx, records)

	plotErr := stats.WritePlot(groups, p.plotOutput)
	if plotErr != nil {
		p.logger.WarnContext(ctx, "prebundle: plot not written", "path", p.plotOutput, "error", plotErr)

		return
	}

	p.logger.InfoContext(ctx, "prebundle: plot written", "path", p.plotOutput)
}
