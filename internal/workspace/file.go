package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/dnsync-labs/dnsync/internal/platform"
	"go.yaml.in/yaml/v3"
)

const projectsKey = "projects"

// FileRegistry stores entries in a YAML document under a top-level
// "projects" mapping. Other top-level keys, comments and the order of
// existing projects are preserved across writes.
type FileRegistry struct {
	Path string

	mu sync.Mutex
}

// NewFileRegistry creates a registry backed by the YAML file at path. The
// file does not need to exist yet.
func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{Path: path}
}

// Entries returns all entries sorted by name.
func (r *FileRegistry) Entries(_ context.Context) ([]*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	projects, err := projectsNode(doc, false)
	if err != nil || projects == nil {
		return nil, err
	}

	out := make([]*Entry, 0, len(projects.Content)/2)
	for i := 0; i+1 < len(projects.Content); i += 2 {
		e, err := decodeEntry(projects.Content[i].Value, projects.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("registry %s: %w", r.Path, err)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Entry returns the named entry or ErrNotFound.
func (r *FileRegistry) Entry(_ context.Context, name string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	projects, err := projectsNode(doc, false)
	if err != nil {
		return nil, err
	}
	if projects != nil {
		if _, value := lookup(projects, name); value != nil {
			e, err := decodeEntry(name, value)
			if err != nil {
				return nil, fmt.Errorf("registry %s: %w", r.Path, err)
			}
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Write validates every entry, merges them into the document and replaces
// the file atomically. Nothing is written when no entry changes.
func (r *FileRegistry) Write(_ context.Context, entries ...*Entry) error {
	for _, e := range entries {
		if err := ValidateEntry(e); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	projects, err := projectsNode(doc, true)
	if err != nil {
		return err
	}

	sorted := append([]*Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	changed := false
	for _, e := range sorted {
		key, value := lookup(projects, e.Name)
		if value == nil {
			node := &yaml.Node{}
			if err := node.Encode(e); err != nil {
				return fmt.Errorf("encoding project %q: %w", e.Name, err)
			}
			projects.Content = append(projects.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name}, node)
			changed = true
			continue
		}

		incoming := &yaml.Node{}
		if err := incoming.Encode(e); err != nil {
			return fmt.Errorf("encoding project %q: %w", e.Name, err)
		}
		if !mergeNode(value, incoming, "") {
			continue
		}
		merged, err := decodeEntry(key.Value, value)
		if err != nil {
			return fmt.Errorf("registry %s: %w", r.Path, err)
		}
		if err := ValidateEntry(merged); err != nil {
			return err
		}
		changed = true
	}

	if !changed {
		return nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding registry %s: %w", r.Path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding registry %s: %w", r.Path, err)
	}

	if err := platform.WriteFileAtomic(r.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// read loads the registry document. A missing or empty file yields an empty
// document with a top-level mapping.
func (r *FileRegistry) read() (*yaml.Node, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading registry %s: %w", r.Path, err)
	}

	doc := &yaml.Node{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("parsing registry %s: %w", r.Path, err)
		}
	}
	if doc.Kind == 0 {
		doc = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("registry %s: top level must be a mapping", r.Path)
	}
	return doc, nil
}

// projectsNode returns the "projects" mapping of doc, creating it when
// create is set. It returns nil without error when absent and not created.
func projectsNode(doc *yaml.Node, create bool) (*yaml.Node, error) {
	top := doc.Content[0]
	_, value := lookup(top, projectsKey)
	if value == nil {
		if !create {
			return nil, nil
		}
		value = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		top.Content = append(top.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: projectsKey}, value)
		return value, nil
	}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*value = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%q must be a mapping of project names", projectsKey)
	}
	return value, nil
}

// mergeNode adds what src has and dst lacks, working on the YAML tree so
// keys the Entry type does not model survive. Values present in dst win.
// Options and configurations gain missing keys only; tags gain missing
// items. It reports whether dst changed.
func mergeNode(dst, src *yaml.Node, key string) bool {
	if isEmptyNode(dst) {
		if isEmptyNode(src) {
			return false
		}
		head, line, foot := dst.HeadComment, dst.LineComment, dst.FootComment
		*dst = *src
		dst.HeadComment, dst.LineComment, dst.FootComment = head, line, foot
		return true
	}

	changed := false
	switch {
	case dst.Kind == yaml.MappingNode && src.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(src.Content); i += 2 {
			k, v := src.Content[i], src.Content[i+1]
			_, current := lookup(dst, k.Value)
			if current == nil {
				dst.Content = append(dst.Content, k, v)
				changed = true
				continue
			}
			if key == "options" || key == "configurations" {
				continue
			}
			if mergeNode(current, v, k.Value) {
				changed = true
			}
		}
	case dst.Kind == yaml.SequenceNode && src.Kind == yaml.SequenceNode && key == "tags":
		for _, item := range src.Content {
			if !containsScalar(dst, item.Value) {
				dst.Content = append(dst.Content, item)
				changed = true
			}
		}
	}
	return changed
}

func isEmptyNode(n *yaml.Node) bool {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Tag == "!!null" || n.Value == ""
	case yaml.MappingNode, yaml.SequenceNode:
		return len(n.Content) == 0
	}
	return false
}

func containsScalar(seq *yaml.Node, value string) bool {
	for _, item := range seq.Content {
		if item.Kind == yaml.ScalarNode && item.Value == value {
			return true
		}
	}
	return false
}

// lookup finds key in a mapping node and returns its key and value nodes.
func lookup(mapping *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i], mapping.Content[i+1]
		}
	}
	return nil, nil
}

func decodeEntry(name string, node *yaml.Node) (*Entry, error) {
	var e Entry
	if err := node.Decode(&e); err != nil {
		return nil, fmt.Errorf("decoding project %q: %w", name, err)
	}
	e.Name = name
	return &e, nil
}
