package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreed420/vite-plugin-svelte/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	// An explicitly named but missing file is a read error.
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	contents := `
extensions: [".svelte", ".svx"]
compile:
  generate: ssr
  preprocess: true
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".svelte", ".svx"}, cfg.Extensions)
	assert.Equal(t, config.GenerateSSR, cfg.Compile.Generate)
	assert.True(t, cfg.Compile.Preprocess)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Unset keys keep their defaults.
	assert.Equal(t, config.DefaultLookupLimit, cfg.Report.LookupLimit)
	assert.Equal(t, config.DefaultLogMaxBackups, cfg.Log.MaxBackups)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := config.Config{
		Extensions: []string{".svelte"},
		Compile:    config.CompileConfig{Generate: config.GenerateDOM},
		Log:        config.LogConfig{Level: "info"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"no extensions", func(c *config.Config) { c.Extensions = nil }, config.ErrNoExtensions},
		{"extension without dot", func(c *config.Config) { c.Extensions = []string{"svelte"} }, config.ErrBadExtension},
		{"bad generate", func(c *config.Config) { c.Compile.Generate = "wasm" }, config.ErrInvalidGenerate},
		{"negative lookup limit", func(c *config.Config) { c.Report.LookupLimit = -1 }, config.ErrInvalidLookupLimit},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, config.ErrInvalidLogLevel},
		{"negative rotation", func(c *config.Config) { c.Log.MaxBackups = -1 }, config.ErrInvalidLogRotation},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.wantErr)
		})
	}
}
