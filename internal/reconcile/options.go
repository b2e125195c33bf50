package reconcile

import (
	"path"

	"github.com/dnsync-labs/dnsync/internal/config"
	"github.com/dnsync-labs/dnsync/internal/manifest"
	"github.com/dnsync-labs/dnsync/internal/metrics"
	"github.com/dnsync-labs/dnsync/internal/targets"
	"github.com/dnsync-labs/dnsync/internal/workspace"
)

// DefaultConcurrency bounds the number of candidates processed at once.
const DefaultConcurrency = 4

// DefaultIgnore drops build output and package directories from the scan.
var DefaultIgnore = []string{"**/bin/**", "**/obj/**", "**/node_modules/**"}

// Group is a workspace directory whose projects share a project type.
type Group struct {
	Dir         string // workspace-relative, slash-separated
	ProjectType workspace.ProjectType
}

// DefaultGroups registers apps/ as applications and libs/ as libraries.
var DefaultGroups = []Group{
	{Dir: "apps", ProjectType: workspace.ProjectTypeApplication},
	{Dir: "libs", ProjectType: workspace.ProjectTypeLibrary},
}

// Options configure a Reconciler. Zero values mean the defaults.
type Options struct {
	Groups      []Group
	Extensions  []string // manifest extensions; defaults to manifest.Extensions
	Ignore      []string // doublestar patterns dropped from the scan
	TestMarkers []string // package references marking a test project
	// Strict aborts the pass when a candidate directory holds several
	// manifests instead of picking one.
	Strict      bool
	Concurrency int
	Targets     targets.Options
	// DryRun computes the entries without writing them.
	DryRun  bool
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if len(o.Groups) == 0 {
		o.Groups = DefaultGroups
	}
	if len(o.Extensions) == 0 {
		o.Extensions = manifest.Extensions
	}
	if o.Ignore == nil {
		o.Ignore = DefaultIgnore
	}
	if o.Concurrency < 1 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// OptionsFromConfig maps the workspace configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	var groups []Group
	if dir := cfg.Layout.AppsDir; dir != "" {
		groups = append(groups, Group{Dir: path.Clean(dir), ProjectType: workspace.ProjectTypeApplication})
	}
	if dir := cfg.Layout.LibsDir; dir != "" {
		groups = append(groups, Group{Dir: path.Clean(dir), ProjectType: workspace.ProjectTypeLibrary})
	}
	return Options{
		Groups:      groups,
		Extensions:  cfg.Discovery.Extensions,
		Ignore:      cfg.Discovery.Ignore,
		TestMarkers: cfg.Discovery.TestMarkers,
		Strict:      cfg.Discovery.Strict,
		Concurrency: cfg.Reconcile.Concurrency,
		Targets: targets.Options{
			ExecutorPrefix: cfg.Targets.ExecutorPrefix,
			OutputDir:      cfg.Targets.OutputDir,
		},
	}
}
