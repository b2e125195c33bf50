package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/dnsync-labs/dnsync/internal/discovery"
	"github.com/dnsync-labs/dnsync/internal/naming"
	"github.com/dnsync-labs/dnsync/internal/reconcile"
	"github.com/dnsync-labs/dnsync/internal/toolchain"
	"github.com/dnsync-labs/dnsync/internal/workspace"
)

// Kind is the kind of project to create.
type Kind string

const (
	KindApp  Kind = "app"
	KindLib  Kind = "lib"
	KindTest Kind = "test"
)

// Kinds lists the valid kinds in display order.
var Kinds = []Kind{KindApp, KindLib, KindTest}

// identifierRe matches .NET project names such as "MyTestApi.Test".
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Request describes the project to create.
type Request struct {
	Kind Kind
	Name string // .NET project name, also the root namespace
	// Template overrides the dotnet template for the kind.
	Template string
	// Directory overrides the workspace-relative project directory.
	Directory string
	// Reference names a registered project the new one references, typically
	// the project under test.
	Reference string
}

// Result holds the outcome of a scaffold.
type Result struct {
	Dir       string // workspace-relative project directory
	Manifest  string // workspace-relative manifest path
	Reconcile *reconcile.Result
}

// Scaffolder creates projects and registers them.
type Scaffolder struct {
	Reconciler *reconcile.Reconciler
	AppsDir    string // defaults to "apps"
	LibsDir    string // defaults to "libs"
}

// Generate creates the project described by req in ws and reconciles the
// workspace so the project is registered.
func (s *Scaffolder) Generate(ctx context.Context, ws *workspace.Workspace, client toolchain.Client, req Request) (*Result, error) {
	if !identifierRe.MatchString(req.Name) {
		return nil, fmt.Errorf("invalid project name %q: use letters, digits and underscores, optionally dot-separated", req.Name)
	}
	template, err := templateFor(req)
	if err != nil {
		return nil, err
	}

	var refManifest string
	if req.Reference != "" {
		if refManifest, err = s.locateReference(ctx, ws, req.Reference); err != nil {
			return nil, err
		}
	}

	dir := req.Directory
	if dir == "" {
		dir = path.Join(s.baseDir(req.Kind), naming.Slug(req.Name))
	}
	dir = path.Clean(filepath.ToSlash(dir))
	absDir := filepath.Join(ws.Root, filepath.FromSlash(dir))

	// Refuse to overwrite existing files.
	if existing, err := os.ReadDir(absDir); err == nil && len(existing) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", dir)
	}

	if err := client.New(ctx, template, absDir, req.Name); err != nil {
		return nil, fmt.Errorf("creating %s project %s: %w", req.Kind, req.Name, err)
	}

	locator := &discovery.Locator{Root: ws.Root}
	manifestPath, err := locator.Locate(dir)
	if err != nil {
		return nil, fmt.Errorf("locating generated manifest: %w", err)
	}

	if refManifest != "" {
		err := client.AddReference(ctx,
			filepath.Join(ws.Root, filepath.FromSlash(manifestPath)),
			filepath.Join(ws.Root, filepath.FromSlash(refManifest)))
		if err != nil {
			return nil, fmt.Errorf("referencing %s: %w", req.Reference, err)
		}
	}

	res := &Result{Dir: dir, Manifest: manifestPath}
	if s.Reconciler == nil {
		return res, nil
	}
	if res.Reconcile, err = s.Reconciler.Reconcile(ctx, ws, client); err != nil {
		return nil, fmt.Errorf("registering %s: %w", manifestPath, err)
	}
	return res, nil
}

// locateReference returns the manifest of the registered project name.
func (s *Scaffolder) locateReference(ctx context.Context, ws *workspace.Workspace, name string) (string, error) {
	e, err := ws.Registry.Entry(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolving reference: %w", err)
	}
	m, err := (&discovery.Locator{Root: ws.Root}).Locate(e.Root)
	if errors.Is(err, discovery.ErrNotFound) {
		return "", fmt.Errorf("project %s has no manifest in %s", name, e.Root)
	}
	return m, err
}

func (s *Scaffolder) baseDir(kind Kind) string {
	if kind == KindLib {
		if s.LibsDir != "" {
			return s.LibsDir
		}
		return "libs"
	}
	if s.AppsDir != "" {
		return s.AppsDir
	}
	return "apps"
}

func templateFor(req Request) (string, error) {
	if req.Template != "" {
		return req.Template, nil
	}
	t, ok := toolchain.Templates[string(req.Kind)]
	if !ok {
		return "", fmt.Errorf("unknown project kind %q: valid kinds are %v", req.Kind, Kinds)
	}
	return t, nil
}
