package discovery

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob matches every pattern under root and returns the de-duplicated,
// sorted union of matches. Paths matching any ignore pattern are dropped.
// Patterns are doublestar patterns relative to root ("apps/**/*.csproj").
func Glob(root string, patterns, ignore []string) ([]string, error) {
	for _, p := range append(append([]string(nil), patterns...), ignore...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var result []string

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("globbing %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || ignored(m, ignore) {
				continue
			}
			seen[m] = true
			result = append(result, m)
		}
	}

	sort.Strings(result)
	return result, nil
}

// ignored reports whether p matches any of the ignore patterns.
func ignored(p string, ignore []string) bool {
	for _, pattern := range ignore {
		// Patterns were validated up front, so Match cannot fail here.
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// ManifestPattern builds the pattern matching every manifest extension below
// dir, e.g. "apps/**/*.{[cC][sS][pP][rR][oO][jJ]}". Extensions match in any
// case, like manifest.IsManifestFile. An empty dir or "." means the whole
// workspace.
func ManifestPattern(dir string, extensions []string) string {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		exts = append(exts, foldCase(strings.TrimPrefix(ext, ".")))
	}

	prefix := ""
	if dir = strings.Trim(path.Clean(dir), "/"); dir != "." && dir != "" {
		prefix = dir + "/"
	}
	if len(exts) == 1 {
		return prefix + "**/*." + exts[0]
	}
	return prefix + "**/*.{" + strings.Join(exts, ",") + "}"
}

// foldCase turns each letter of s into a class matching both cases.
func foldCase(s string) string {
	var b strings.Builder
	for _, r := range s {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		if lower == upper {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('[')
		b.WriteRune(lower)
		b.WriteRune(upper)
		b.WriteByte(']')
	}
	return b.String()
}
