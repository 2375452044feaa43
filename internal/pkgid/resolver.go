// Package pkgid resolves the originating npm package for a processed file by
// walking up to the nearest package manifest and reading its display name.
package pkgid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// manifestFile is the package manifest name looked for on the walk up.
const manifestFile = "package.json"

// manifest is the subset of package.json the resolver cares about.
type manifest struct {
	Name string `json:"name"`
}

// Resolver finds the closest package manifest above a file. Directory lookups
// are memoized for the lifetime of the resolver, which matches one run.
type Resolver struct {
	mu   sync.Mutex
	dirs map[string]string // directory -> manifest path, "" when none found.
}

// New creates an empty Resolver.
func New() *Resolver {
	return &Resolver{dirs: make(map[string]string)}
}

// ResolvePackagePath walks up from filePath to the nearest package.json and
// returns its path. An empty path with a nil error means the walk reached the
// filesystem root without a hit.
func (r *Resolver) ResolvePackagePath(filePath string) (string, error) {
	dir := filepath.Dir(filePath)

	r.mu.Lock()
	cached, ok := r.dirs[dir]
	r.mu.Unlock()

	if ok {
		return cached, nil
	}

	found, err := findUp(dir)
	if err != nil {
		return "", fmt.Errorf("resolve package for %s: %w", filePath, err)
	}

	r.mu.Lock()
	r.dirs[dir] = found
	r.mu.Unlock()

	return found, nil
}

// findUp probes dir and each parent for a package manifest.
func findUp(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, manifestFile)

		_, statErr := os.Stat(candidate)
		if statErr == nil {
			return candidate, nil
		}

		if !os.IsNotExist(statErr) {
			return "", statErr
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// DisplayName reads the manifest at manifestPath and returns its name field.
// A missing name, unreadable file, or parse failure falls back to the
// manifest path itself; reporting never aborts over a bad manifest.
func (r *Resolver) DisplayName(manifestPath string) string {
	raw, readErr := os.ReadFile(manifestPath)
	if readErr != nil {
		return manifestPath
	}

	var m manifest

	unmarshalErr := json.Unmarshal(raw, &m)
	if unmarshalErr != nil || m.Name == "" {
		return manifestPath
	}

	return m.Name
}
