package toolchain

import (
	"context"

	"github.com/Masterminds/semver/v3"
)

// Client is the subset of the dotnet CLI dnsync uses.
type Client interface {
	// Version returns the version of the active .NET SDK.
	Version(ctx context.Context) (*semver.Version, error)
	// NewToolManifest creates .config/dotnet-tools.json in dir.
	NewToolManifest(ctx context.Context, dir string) error
	// New instantiates a dotnet template (e.g. "webapi", "classlib", "xunit")
	// named name into outputDir.
	New(ctx context.Context, template, outputDir, name string) error
	// AddReference adds a project-to-project reference from project to reference.
	AddReference(ctx context.Context, project, reference string) error
}

// Templates maps dnsync project kinds to the dotnet templates that create them.
var Templates = map[string]string{
	"app":  "webapi",
	"lib":  "classlib",
	"test": "xunit",
}
