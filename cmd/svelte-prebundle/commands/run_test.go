package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreed420/vite-plugin-svelte/cmd/svelte-prebundle/commands"
)

func writeTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	files := map[string]string{
		"node_modules/lib/package.json":    `{"name":"lib"}`,
		"node_modules/lib/src/A.svelte":    "<h1>a</h1>",
		"node_modules/lib/src/B.svelte":    "<h1>b</h1>",
		"node_modules/other/package.json":  `{"name":"other"}`,
		"node_modules/other/Widget.svelte": "<p>w</p>",
		"node_modules/other/ignored.js":    "export default 1",
	}

	for rel, contents := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}

	return root
}

func TestRunCommand_ReportsGroupedTimings(t *testing.T) {
	root := writeTree(t)

	var out bytes.Buffer

	cmd := commands.NewRunCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{root, "--config", writeConfig(t)})

	require.NoError(t, cmd.Execute())

	report := out.String()
	assert.Contains(t, report, "lib")
	assert.Contains(t, report, "other")
	assert.Contains(t, report, "prebundling run took")
}

func TestRunCommand_SingleFileHint(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "package.json"), []byte(`{"name":"lib"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "Only.svelte"), []byte("<p/>"), 0o644))

	var out bytes.Buffer

	cmd := commands.NewRunCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{root, "--config", writeConfig(t)})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Consider excluding")
}

func TestRunCommand_NoMatchingFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.js"), []byte("1"), 0o644))

	cmd := commands.NewRunCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{root, "--config", writeConfig(t)})

	assert.ErrorIs(t, cmd.Execute(), commands.ErrNoFiles)
}

func TestRunCommand_WritesPlot(t *testing.T) {
	root := writeTree(t)
	plotPath := filepath.Join(t.TempDir(), "plot.html")

	cmd := commands.NewRunCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{root, "--config", writeConfig(t), "--plot", plotPath})

	require.NoError(t, cmd.Execute())
	assert.FileExists(t, plotPath)
}

// writeConfig pins an explicit config file so developer-machine
// .sveltebundle files cannot leak into the test.
func writeConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extensions: [\".svelte\"]\n"), 0o644))

	return path
}
