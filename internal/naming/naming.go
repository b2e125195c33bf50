package naming

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/dnsync-labs/dnsync/internal/manifest"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrAlreadyRegistered is returned by Resolver.Claim when the name is already
// registered for the same root. The candidate should be skipped.
var ErrAlreadyRegistered = errors.New("project already registered")

// DuplicateProjectNameError is returned when a name is already taken by a
// project at a different root.
type DuplicateProjectNameError struct {
	Name         string
	ExistingRoot string
	Root         string
}

// Error implements the error interface.
func (e *DuplicateProjectNameError) Error() string {
	return fmt.Sprintf("project name collision: %q is already used by %s and would also be assigned to %s",
		e.Name, e.ExistingRoot, e.Root)
}

// InvalidNameError is returned when a manifest's identity yields no usable
// name, e.g. one made only of punctuation.
type InvalidNameError struct {
	Identity string
	Path     string
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("cannot derive a project name from %q in %s", e.Identity, e.Path)
}

// Name is the resolved identity of a project.
type Name struct {
	Canonical string // unique registry key
	Slug      string // file-system-safe form
}

// Slug normalizes an identifier: word boundaries in camel case become
// hyphens, everything is lower-cased, and each run of non-alphanumeric
// characters collapses into one hyphen. "MyTestApi.Test" → "my-test-api-test".
func Slug(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteRune('-')
			}
		}
		b.WriteRune(r)
	}

	var out strings.Builder
	pendingHyphen := false
	// Casers carry state, so each call gets its own.
	for _, r := range cases.Lower(language.Und).String(b.String()) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && out.Len() > 0 {
				out.WriteRune('-')
			}
			pendingHyphen = false
			out.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return out.String()
}

// Resolve derives the project name from a manifest's declared identity.
func Resolve(m *manifest.Manifest) (Name, error) {
	identity := m.Identity()
	slug := Slug(identity)
	if slug == "" {
		return Name{}, &InvalidNameError{Identity: identity, Path: m.Path}
	}
	return Name{Canonical: slug, Slug: slug}, nil
}

// Resolver checks names against the registered projects and the names
// claimed earlier in the same pass. It is safe for concurrent use.
type Resolver struct {
	mu      sync.Mutex
	roots   map[string]string // name -> registered root
	claimed map[string]string // name -> root claimed this pass
}

// NewResolver creates a Resolver over a snapshot of registered names,
// mapping each name to its root.
func NewResolver(registered map[string]string) *Resolver {
	roots := make(map[string]string, len(registered))
	for name, root := range registered {
		roots[name] = root
	}
	return &Resolver{roots: roots, claimed: make(map[string]string)}
}

// Claim reserves name for root. It returns ErrAlreadyRegistered when the
// registry already maps name to root, and a *DuplicateProjectNameError when
// name belongs to another root, either in the registry or claimed earlier in
// this pass.
func (r *Resolver) Claim(name, root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.roots[name]; ok {
		if existing == root {
			return ErrAlreadyRegistered
		}
		return &DuplicateProjectNameError{Name: name, ExistingRoot: existing, Root: root}
	}
	if existing, ok := r.claimed[name]; ok && existing != root {
		return &DuplicateProjectNameError{Name: name, ExistingRoot: existing, Root: root}
	}
	r.claimed[name] = root
	return nil
}
