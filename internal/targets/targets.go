package targets

import (
	"path"
	"strings"

	"github.com/dnsync-labs/dnsync/internal/manifest"
	"github.com/dnsync-labs/dnsync/internal/workspace"
)

// Defaults applied when Options fields are empty.
const (
	DefaultExecutorPrefix = "dotnet"
	DefaultOutputDir      = "dist"
)

// Options tune the synthesized targets.
type Options struct {
	ExecutorPrefix string // executor namespace, e.g. "dotnet" in "dotnet:build"
	OutputDir      string // build outputs go to <OutputDir>/<root>
}

func (o Options) withDefaults() Options {
	if o.ExecutorPrefix == "" {
		o.ExecutorPrefix = DefaultExecutorPrefix
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	return o
}

// Synthesize returns the targets for the project at root whose manifest is m.
// Every project gets build. Test projects get test; other applications get
// serve. A test project never gets serve.
func Synthesize(m *manifest.Manifest, root string, kind workspace.ProjectType, isTest bool, opts Options) map[string]workspace.TargetSpec {
	opts = opts.withDefaults()

	out := map[string]workspace.TargetSpec{
		workspace.TargetBuild: {
			Executor: executor(opts, workspace.TargetBuild),
			Options: map[string]any{
				"project":        m.Path,
				"root":           root,
				"configuration":  "Debug",
				"noDependencies": true,
			},
			Outputs:        []string{path.Join(opts.OutputDir, root)},
			Configurations: production(),
		},
	}

	switch {
	case isTest:
		out[workspace.TargetTest] = workspace.TargetSpec{
			Executor: executor(opts, workspace.TargetTest),
			Options: map[string]any{
				"project":       m.Path,
				"root":          root,
				"configuration": "Debug",
			},
		}
	case kind == workspace.ProjectTypeApplication:
		options := map[string]any{
			"project":       m.Path,
			"root":          root,
			"configuration": "Debug",
		}
		if fw := m.PrimaryFramework(); fw != nil {
			options["framework"] = fw.Moniker
		}
		out[workspace.TargetServe] = workspace.TargetSpec{
			Executor:       executor(opts, workspace.TargetServe),
			Options:        options,
			Configurations: production(),
		}
	}

	return out
}

// Tags returns the tags for a project: the language of its manifest, and
// "type:test" for test projects.
func Tags(m *manifest.Manifest, isTest bool) []string {
	tags := []string{"dotnet"}
	switch strings.ToLower(path.Ext(m.Path)) {
	case ".csproj":
		tags = append(tags, "lang:csharp")
	case ".fsproj":
		tags = append(tags, "lang:fsharp")
	case ".vbproj":
		tags = append(tags, "lang:vb")
	}
	if isTest {
		tags = append(tags, "type:test")
	}
	return tags
}

func executor(opts Options, target string) string {
	return opts.ExecutorPrefix + ":" + target
}

func production() map[string]map[string]any {
	return map[string]map[string]any{
		"production": {"configuration": "Release"},
	}
}
