// Package commands implements CLI command handlers for svelte-prebundle.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mfreed420/vite-plugin-svelte/internal/config"
	"github.com/mfreed420/vite-plugin-svelte/internal/logging"
	"github.com/mfreed420/vite-plugin-svelte/internal/observability"
	"github.com/mfreed420/vite-plugin-svelte/internal/pkgid"
	"github.com/mfreed420/vite-plugin-svelte/internal/plugin"
	"github.com/mfreed420/vite-plugin-svelte/internal/prebundle"
	"github.com/mfreed420/vite-plugin-svelte/internal/stats"
)

// defaultWorkers is the load hook fan-out for one pass.
const defaultWorkers = 8

// ErrNoFiles is returned when the directory holds no matching files.
var ErrNoFiles = errors.New("no files matched the configured extensions")

// NewRunCommand creates the run subcommand.
func NewRunCommand() *cobra.Command {
	var (
		configPath string
		extensions []string
		plotOutput string
		workers    int
		preprocess bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run <dir>",
		Short: "Prebundle matching files under a directory and report timings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			if len(extensions) > 0 {
				cfg.Extensions = extensions
			}

			if plotOutput != "" {
				cfg.Report.PlotOutput = plotOutput
			}

			if preprocess {
				cfg.Compile.Preprocess = true
			}

			if verbose {
				cfg.Log.Level = "debug"
			}

			validateErr := cfg.Validate()
			if validateErr != nil {
				return validateErr
			}

			return runPass(cmd.Context(), args[0], cfg, workers, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().StringSliceVarP(&extensions, "extensions", "e", nil, "file extensions to match, e.g. .svelte")
	cmd.Flags().StringVarP(&plotOutput, "plot", "p", "", "write an HTML plot page to this path")
	cmd.Flags().IntVarP(&workers, "workers", "w", defaultWorkers, "concurrent file loads")
	cmd.Flags().BoolVar(&preprocess, "preprocess", false, "run the preprocess stage")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	return cmd
}

// runPass acts as the host for one prebundling run: start signal, concurrent
// loads, end signal, report to out.
func runPass(ctx context.Context, dir string, cfg *config.Config, workers int, out io.Writer) error {
	logger := logging.New(cfg.Log, os.Stderr)

	runner := &prebundle.Runner{
		Compiler: prebundle.PassthroughCompiler{},
		Options: prebundle.CompileOptions{
			Generate:   cfg.Compile.Generate,
			Dev:        cfg.Compile.Dev,
			Hydratable: cfg.Compile.Hydratable,
		},
		Logger: logger,
	}

	if cfg.Compile.Preprocess {
		runner.Preprocessor = prebundle.IdentityPreprocessor{}
	}

	var metrics *observability.Metrics

	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()

		closeMetrics, serveErr := serveMetrics(cfg.Metrics.Addr, metrics, logger)
		if serveErr != nil {
			return serveErr
		}

		defer closeMetrics()
	}

	host := plugin.New(plugin.Options{
		Extensions: cfg.Extensions,
		Runner:     runner,
		Aggregator: &stats.Aggregator{
			Resolver:    pkgid.New(),
			Logger:      logger,
			LookupLimit: cfg.Report.LookupLimit,
		},
		Metrics:    metrics,
		Logger:     logger,
		Sink:       func(text string) { fmt.Fprintln(out, text) },
		PlotOutput: cfg.Report.PlotOutput,
	})

	files, collectErr := collectFiles(dir, host)
	if collectErr != nil {
		return collectErr
	}

	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrNoFiles, dir)
	}

	host.OnStart()

	if workers <= 0 {
		workers = defaultWorkers
	}

	group, loadCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, file := range files {
		file := file
		group.Go(func() error {
			result := host.OnLoad(loadCtx, file)
			for _, diag := range result.Diagnostics {
				logger.Warn("diagnostic", "file", diag.File, "text", diag.Text)
			}

			// Per-file failures stay local; the pass continues.
			return nil
		})
	}

	_ = group.Wait()

	host.OnEnd(ctx)

	return nil
}

// collectFiles walks dir and returns the files the plugin matches.
func collectFiles(dir string, host *plugin.Plugin) ([]string, error) {
	var files []string

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && host.Matches(path) {
			files = append(files, path)
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, walkErr)
	}

	return files, nil
}

// serveMetrics exposes the prometheus pull endpoint for the duration of the
// pass and returns its shutdown func.
func serveMetrics(addr string, metrics *observability.Metrics, logger *slog.Logger) (func(), error) {
	listener, listenErr := net.Listen("tcp", addr)
	if listenErr != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, listenErr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Handler: mux}

	go func() { _ = srv.Serve(listener) }()

	logger.Info("metrics endpoint up", "addr", listener.Addr().String())

	return func() { _ = srv.Shutdown(context.Background()) }, nil
}
