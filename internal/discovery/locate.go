package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dnsync-labs/dnsync/internal/manifest"
)

// ErrNotFound is returned by Locate when a directory holds no manifest.
var ErrNotFound = errors.New("no project manifest found")

// AmbiguousManifestError is returned by a strict Locator when a directory
// holds more than one manifest.
type AmbiguousManifestError struct {
	Dir     string
	Matches []string
}

// Error implements the error interface.
func (e *AmbiguousManifestError) Error() string {
	return fmt.Sprintf("directory %s contains %d project manifests (%s); keep one or disable discovery.strict",
		e.Dir, len(e.Matches), strings.Join(e.Matches, ", "))
}

// Locator resolves canonical manifests below a workspace root.
type Locator struct {
	Root string // absolute workspace root
	// Strict turns multiple manifests in one directory into an
	// *AmbiguousManifestError instead of a deterministic pick.
	Strict bool
}

// Locate returns the workspace-relative path of the canonical manifest in
// dir (itself workspace-relative). A missing directory, or one without any
// manifest, yields ErrNotFound. When several manifests exist the winner is,
// in order: the manifest named after the directory, the shortest file name,
// the lexicographically first name.
func (l *Locator) Locate(dir string) (string, error) {
	dir = path.Clean(filepath.ToSlash(dir))

	entries, err := os.ReadDir(filepath.Join(l.Root, filepath.FromSlash(dir)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
		}
		return "", fmt.Errorf("listing %s: %w", dir, err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() || !manifest.IsManifestFile(entry.Name()) {
			continue
		}
		matches = append(matches, entry.Name())
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
	case 1:
		return path.Join(dir, matches[0]), nil
	}

	if l.Strict {
		sort.Strings(matches)
		return "", &AmbiguousManifestError{Dir: dir, Matches: matches}
	}
	return path.Join(dir, pickCanonical(path.Base(dir), matches)), nil
}

// pickCanonical applies the tie-break rule to several manifest names.
func pickCanonical(dirName string, names []string) string {
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		aOwn, bOwn := stem(a) == dirName, stem(b) == dirName
		if aOwn != bOwn {
			return aOwn
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return sorted[0]
}

// stem strips the extension from a file name.
func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
