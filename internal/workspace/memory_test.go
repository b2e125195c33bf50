package workspace

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRegistry_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	if err := r.Write(ctx, sampleEntry()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if r.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", r.Writes())
	}

	got, err := r.Entry(ctx, "my-test-api")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if got.Root != "apps/my-test-api" {
		t.Errorf("Root = %q, want apps/my-test-api", got.Root)
	}

	if _, err := r.Entry(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Entry(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryRegistry_UnchangedWriteIsNoop(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(sampleEntry())

	if err := r.Write(ctx, sampleEntry()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if r.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0 for identical entry", r.Writes())
	}
}

func TestMemoryRegistry_InvalidBatchWritesNothing(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	bad := sampleEntry()
	bad.Name = "other"
	bad.Root = "/abs"

	if err := r.Write(ctx, sampleEntry(), bad); err == nil {
		t.Fatal("expected validation error")
	}
	entries, _ := r.Entries(ctx)
	if len(entries) != 0 {
		t.Errorf("Entries() = %d entries, want 0 after rejected batch", len(entries))
	}
	if r.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", r.Writes())
	}
}

func TestMemoryRegistry_EntriesSorted(t *testing.T) {
	ctx := context.Background()
	b := sampleEntry()
	b.Name, b.Root = "b-lib", "libs/b-lib"
	a := sampleEntry()
	a.Name, a.Root = "a-lib", "libs/a-lib"
	r := NewMemoryRegistry(b, a)

	entries, err := r.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a-lib" || entries[1].Name != "b-lib" {
		t.Errorf("Entries() order = %v, want [a-lib b-lib]", names(entries))
	}
}

func names(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
