// Package config loads and validates the prebundle instrumentation settings.
package config

import (
	"errors"
	"strings"
)

// Config is the top-level configuration struct.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Extensions []string      `mapstructure:"extensions"`
	Compile    CompileConfig `mapstructure:"compile"`
	Report     ReportConfig  `mapstructure:"report"`
	Log        LogConfig     `mapstructure:"log"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
}

// CompileConfig holds the base compiler option set.
type CompileConfig struct {
	Generate   string `mapstructure:"generate"`
	Dev        bool   `mapstructure:"dev"`
	Hydratable bool   `mapstructure:"hydratable"`
	Preprocess bool   `mapstructure:"preprocess"`
}

// ReportConfig holds end-of-run report settings.
type ReportConfig struct {
	PlotOutput  string `mapstructure:"plot_output"`
	LookupLimit int    `mapstructure:"lookup_limit"`
}

// LogConfig holds logging destination and rotation settings.
// Rotation parameters follow lumberjack semantics.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// MetricsConfig holds the prometheus pull endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Validation errors.
var (
	ErrNoExtensions       = errors.New("extensions must list at least one file extension")
	ErrBadExtension       = errors.New("extensions entries must start with a dot")
	ErrInvalidGenerate    = errors.New("compile.generate must be dom or ssr")
	ErrInvalidLookupLimit = errors.New("report.lookup_limit must be non-negative")
	ErrInvalidLogLevel    = errors.New("log.level must be one of debug, info, warn, error")
	ErrInvalidLogRotation = errors.New("log rotation values must be non-negative")
)

// generate targets accepted by the compiler collaborator.
const (
	GenerateDOM = "dom"
	GenerateSSR = "ssr"
)

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}

	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return ErrBadExtension
		}
	}

	if c.Compile.Generate != GenerateDOM && c.Compile.Generate != GenerateSSR {
		return ErrInvalidGenerate
	}

	if c.Report.LookupLimit < 0 {
		return ErrInvalidLookupLimit
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return ErrInvalidLogRotation
	}

	return nil
}
