package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dnsync-labs/dnsync/internal/bootstrap"
	"github.com/dnsync-labs/dnsync/internal/ctxlog"
	"github.com/dnsync-labs/dnsync/internal/discovery"
	"github.com/dnsync-labs/dnsync/internal/manifest"
	"github.com/dnsync-labs/dnsync/internal/metrics"
	"github.com/dnsync-labs/dnsync/internal/naming"
	"github.com/dnsync-labs/dnsync/internal/targets"
	"github.com/dnsync-labs/dnsync/internal/toolchain"
	"github.com/dnsync-labs/dnsync/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// CandidateError records a candidate manifest that was skipped.
type CandidateError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e CandidateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e CandidateError) Unwrap() error { return e.Err }

// Result summarizes a pass.
type Result struct {
	Added      []*workspace.Entry // sorted by name
	Skipped    []string           // candidates whose name was already registered for the same root
	Failures   []CandidateError   // candidates that could not be parsed, sorted by path
	Discovered int                // manifests found by the scan before filtering
	DryRun     bool
}

// Reconciler runs reconciliation passes.
type Reconciler struct {
	Bootstrapper bootstrap.Bootstrapper
	Options      Options
}

// New creates a Reconciler.
func New(b bootstrap.Bootstrapper, opts Options) *Reconciler {
	return &Reconciler{Bootstrapper: b, Options: opts}
}

type candidate struct {
	path        string // canonical manifest, workspace-relative
	projectType workspace.ProjectType
}

// Reconcile runs one pass over ws. The bootstrap step runs exactly once,
// before anything else. On error the registry is left unmodified.
func (r *Reconciler) Reconcile(ctx context.Context, ws *workspace.Workspace, client toolchain.Client) (*Result, error) {
	start := time.Now()
	opts := r.Options.withDefaults()
	logger := ctxlog.FromContext(ctx)

	res, err := r.reconcile(ctx, ws, client, opts)
	if err != nil {
		opts.Metrics.ObservePass(metrics.ResultAborted, time.Since(start))
		return nil, err
	}

	outcome := metrics.ResultNoop
	switch {
	case res.DryRun:
		outcome = metrics.ResultDryRun
	case len(res.Added) > 0:
		outcome = metrics.ResultAdded
	}
	opts.Metrics.SetDiscovered(res.Discovered)
	opts.Metrics.AddParseFailures(len(res.Failures))
	if !res.DryRun {
		for _, e := range res.Added {
			opts.Metrics.AddProject(string(e.ProjectType))
		}
	}
	opts.Metrics.ObservePass(outcome, time.Since(start))

	logger.Debug("reconciliation finished",
		"added", len(res.Added), "failures", len(res.Failures), "duration", time.Since(start))
	return res, nil
}

func (r *Reconciler) reconcile(ctx context.Context, ws *workspace.Workspace, client toolchain.Client, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	if r.Bootstrapper != nil {
		if err := r.Bootstrapper.Bootstrap(ctx, ws, nil, client); err != nil {
			return nil, fmt.Errorf("bootstrapping workspace: %w", err)
		}
	}

	existing, err := ws.Registry.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	// Registered projects always resolve leniently; strictness only applies
	// to new candidates.
	lenient := &discovery.Locator{Root: ws.Root}
	known := make(map[string]bool, len(existing))
	registered := make(map[string]string, len(existing))
	for _, e := range existing {
		registered[e.Name] = e.Root
		p, err := lenient.Locate(e.Root)
		if errors.Is(err, discovery.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("locating manifest of %s: %w", e.Name, err)
		}
		known[p] = true
	}

	res := &Result{DryRun: opts.DryRun}
	candidates, discovered, err := r.scan(ctx, ws, opts, known)
	if err != nil {
		return nil, err
	}
	res.Discovered = discovered

	if len(candidates) == 0 {
		logger.Info("no new projects found", "discovered", discovered)
		return res, nil
	}
	logger.Debug("new manifests", "count", len(candidates))

	built, failures, err := r.build(ctx, ws, opts, candidates)
	if err != nil {
		return nil, err
	}
	res.Failures = failures
	for _, f := range failures {
		logger.Warn("skipping manifest", "manifest", f.Path, "err", f.Err)
	}

	// Claims run in candidate order so collisions are reported deterministically.
	resolver := naming.NewResolver(registered)
	for _, e := range built {
		if e == nil {
			continue
		}
		err := resolver.Claim(e.Name, e.Root)
		if errors.Is(err, naming.ErrAlreadyRegistered) {
			res.Skipped = append(res.Skipped, e.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		res.Added = append(res.Added, e)
	}
	if len(res.Added) == 0 {
		return res, nil
	}

	sort.Slice(res.Added, func(i, j int) bool { return res.Added[i].Name < res.Added[j].Name })
	for _, e := range res.Added {
		if err := workspace.ValidateEntry(e); err != nil {
			return nil, err
		}
	}

	if opts.DryRun {
		logger.Info("dry run, registry not written", "projects", len(res.Added))
		return res, nil
	}
	if err := ws.Registry.Write(ctx, res.Added...); err != nil {
		return nil, fmt.Errorf("writing registry: %w", err)
	}
	for _, e := range res.Added {
		logger.Info("registered project", "name", e.Name, "root", e.Root, "type", e.ProjectType)
	}
	return res, nil
}

// scan globs every group and returns the canonical manifests not yet known,
// sorted by path, along with the raw number of matches.
func (r *Reconciler) scan(ctx context.Context, ws *workspace.Workspace, opts Options, known map[string]bool) ([]candidate, int, error) {
	logger := ctxlog.FromContext(ctx)
	locator := &discovery.Locator{Root: ws.Root, Strict: opts.Strict}

	seen := make(map[string]bool)
	discovered := 0
	var out []candidate

	for _, g := range opts.Groups {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		pattern := discovery.ManifestPattern(g.Dir, opts.Extensions)
		matches, err := discovery.Glob(ws.Root, []string{pattern}, opts.Ignore)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning %s: %w", g.Dir, err)
		}
		discovered += len(matches)

		for _, m := range matches {
			if known[m] {
				continue
			}
			canonical, err := locator.Locate(path.Dir(m))
			if errors.Is(err, discovery.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, 0, err
			}
			if canonical != m {
				logger.Debug("manifest shadowed by canonical manifest", "manifest", m, "canonical", canonical)
			}
			if known[canonical] || seen[canonical] {
				continue
			}
			seen[canonical] = true
			out = append(out, candidate{path: canonical, projectType: g.ProjectType})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, discovered, nil
}

// build turns candidates into entries using a bounded pool. The returned
// slice is parallel to candidates with nil for skipped ones.
func (r *Reconciler) build(ctx context.Context, ws *workspace.Workspace, opts Options, candidates []candidate) ([]*workspace.Entry, []CandidateError, error) {
	entries := make([]*workspace.Entry, len(candidates))
	var (
		mu       sync.Mutex
		failures []CandidateError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := buildEntry(ws.Root, c, opts)
			if err != nil {
				var perr *manifest.ParseError
				var nerr *naming.InvalidNameError
				if errors.As(err, &perr) || errors.As(err, &nerr) {
					mu.Lock()
					failures = append(failures, CandidateError{Path: c.path, Err: err})
					mu.Unlock()
					return nil
				}
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	return entries, failures, nil
}

// buildEntry reads, parses, names and synthesizes one candidate.
func buildEntry(root string, c candidate, opts Options) (*workspace.Entry, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(c.path)))
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", c.path, err)
	}
	m, err := manifest.Parse(c.path, data)
	if err != nil {
		return nil, err
	}
	name, err := naming.Resolve(m)
	if err != nil {
		return nil, err
	}

	projectRoot := path.Dir(c.path)
	isTest := m.IsTestProject(opts.TestMarkers)
	return &workspace.Entry{
		Name:        name.Canonical,
		Root:        projectRoot,
		SourceRoot:  projectRoot,
		ProjectType: c.projectType,
		Tags:        targets.Tags(m, isTest),
		Targets:     targets.Synthesize(m, projectRoot, c.projectType, isTest, opts.Targets),
	}, nil
}
