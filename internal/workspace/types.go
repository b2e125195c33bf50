package workspace

import (
	"context"
	"errors"
)

// ProjectType distinguishes runnable applications from libraries.
type ProjectType string

const (
	ProjectTypeApplication ProjectType = "application"
	ProjectTypeLibrary     ProjectType = "library"
)

// Target names used by synthesized entries.
const (
	TargetBuild = "build"
	TargetServe = "serve"
	TargetTest  = "test"
)

// ErrNotFound is returned by Registry.Entry for unknown names.
var ErrNotFound = errors.New("project not found")

// Entry is the registry's representation of a project.
type Entry struct {
	Name        string                `yaml:"-" json:"name"`
	Root        string                `yaml:"root" json:"root"`
	SourceRoot  string                `yaml:"sourceRoot,omitempty" json:"sourceRoot,omitempty"`
	ProjectType ProjectType           `yaml:"projectType" json:"projectType"`
	Tags        []string              `yaml:"tags,omitempty" json:"tags,omitempty"`
	Targets     map[string]TargetSpec `yaml:"targets,omitempty" json:"targets,omitempty"`
}

// TargetSpec describes how to invoke one task of a project.
type TargetSpec struct {
	Executor       string                    `yaml:"executor" json:"executor"`
	Options        map[string]any            `yaml:"options,omitempty" json:"options,omitempty"`
	Outputs        []string                  `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Configurations map[string]map[string]any `yaml:"configurations,omitempty" json:"configurations,omitempty"`
}

// Registry is the workspace's durable store of projects.
type Registry interface {
	// Entries returns every registered project. Order is unspecified.
	Entries(ctx context.Context) ([]*Entry, error)
	// Entry returns the project registered under name, or ErrNotFound.
	Entry(ctx context.Context, name string) (*Entry, error)
	// Write upserts the given entries in one batch. Existing entries with the
	// same name are merged, unrelated entries are left untouched, and writing
	// the same values twice is a no-op.
	Write(ctx context.Context, entries ...*Entry) error
}

// Workspace is the tree a reconciliation pass operates on.
type Workspace struct {
	Root     string // absolute path of the workspace root
	Registry Registry
}

// HasTarget reports whether the entry defines the named target.
func (e *Entry) HasTarget(name string) bool {
	_, ok := e.Targets[name]
	return ok
}
