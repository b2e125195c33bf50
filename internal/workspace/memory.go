package workspace

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// MemoryRegistry is an in-memory Registry used by tests and dry runs.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	writes  int
}

// NewMemoryRegistry creates a registry pre-populated with entries.
func NewMemoryRegistry(entries ...*Entry) *MemoryRegistry {
	r := &MemoryRegistry{entries: make(map[string]*Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.Name] = e.clone()
	}
	return r
}

// Entries returns copies of all entries sorted by name.
func (r *MemoryRegistry) Entries(_ context.Context) ([]*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Entry returns a copy of the named entry or ErrNotFound.
func (r *MemoryRegistry) Entry(_ context.Context, name string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e.clone(), nil
}

// Write validates and merges the entries. The batch is applied only if every
// entry is valid. A batch that changes nothing does not count as a write.
func (r *MemoryRegistry) Write(_ context.Context, entries ...*Entry) error {
	for _, e := range entries {
		if err := ValidateEntry(e); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for _, e := range entries {
		merged := Merge(r.entries[e.Name], e)
		if existing, ok := r.entries[e.Name]; ok && reflect.DeepEqual(existing, merged) {
			continue
		}
		r.entries[e.Name] = merged
		changed = true
	}
	if changed {
		r.writes++
	}
	return nil
}

// Writes returns how many batches changed the registry.
func (r *MemoryRegistry) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}
