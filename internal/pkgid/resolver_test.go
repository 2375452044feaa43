package pkgid_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreed420/vite-plugin-svelte/internal/pkgid"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestResolvePackagePath_NearestManifestWins(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name":"app"}`)
	writeFile(t, filepath.Join(root, "node_modules", "lib", "package.json"), `{"name":"lib"}`)
	writeFile(t, filepath.Join(root, "node_modules", "lib", "src", "Button.svelte"), "<button/>")

	resolver := pkgid.New()

	pkgPath, err := resolver.ResolvePackagePath(filepath.Join(root, "node_modules", "lib", "src", "Button.svelte"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "node_modules", "lib", "package.json"), pkgPath)
}

func TestResolvePackagePath_NoManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b", "C.svelte"), "<p/>")

	resolver := pkgid.New()

	pkgPath, err := resolver.ResolvePackagePath(filepath.Join(root, "a", "b", "C.svelte"))
	require.NoError(t, err)

	// The walk may still hit a manifest above the temp dir; it must never
	// invent one below it.
	if pkgPath != "" {
		assert.NotContains(t, pkgPath, root)
	}
}

func TestResolvePackagePath_MemoizesPerDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name":"app"}`)
	writeFile(t, filepath.Join(root, "src", "A.svelte"), "<p/>")
	writeFile(t, filepath.Join(root, "src", "B.svelte"), "<p/>")

	resolver := pkgid.New()

	first, err := resolver.ResolvePackagePath(filepath.Join(root, "src", "A.svelte"))
	require.NoError(t, err)

	// Removing the manifest after the first lookup must not change the
	// answer for a sibling file in the same directory.
	require.NoError(t, os.Remove(filepath.Join(root, "package.json")))

	second, err := resolver.ResolvePackagePath(filepath.Join(root, "src", "B.svelte"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	named := filepath.Join(root, "named", "package.json")
	writeFile(t, named, `{"name":"@scope/widgets"}`)

	nameless := filepath.Join(root, "nameless", "package.json")
	writeFile(t, nameless, `{}`)

	broken := filepath.Join(root, "broken", "package.json")
	writeFile(t, broken, `{not json`)

	resolver := pkgid.New()

	assert.Equal(t, "@scope/widgets", resolver.DisplayName(named))
	assert.Equal(t, nameless, resolver.DisplayName(nameless))
	assert.Equal(t, broken, resolver.DisplayName(broken))
	assert.Equal(t, filepath.Join(root, "missing.json"), resolver.DisplayName(filepath.Join(root, "missing.json")))
}
