package manifest

import (
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Extensions lists the manifest file extensions of the .NET languages.
var Extensions = []string{".csproj", ".fsproj", ".vbproj"}

// DefaultTestMarkers are the package references that mark a test project.
var DefaultTestMarkers = []string{"Microsoft.NET.Test.Sdk"}

// Manifest is the parsed, validated content of a project file.
type Manifest struct {
	Path              string      // path the manifest was read from
	Sdk               string      // e.g., "Microsoft.NET.Sdk.Web"; empty for legacy projects
	RootNamespace     string      // empty when not declared
	AssemblyName      string      // empty when not declared
	OutputType        string      // e.g., "Exe", "Library"; empty when not declared
	TargetFrameworks  []Framework // declaration order
	PackageReferences []string    // de-duplicated, declaration order
}

// Framework is a target framework moniker with its parsed version.
type Framework struct {
	Moniker  string          // e.g., "net8.0-windows"
	Family   string          // "net", "netcoreapp", "netstandard", "netframework", or empty if unrecognized
	Version  *semver.Version // nil when the moniker carries no version
	Platform string          // e.g., "windows"; empty when absent
}

// Identity returns the declared project name: RootNamespace if present,
// otherwise AssemblyName, otherwise the manifest file name without extension.
func (m *Manifest) Identity() string {
	if m.RootNamespace != "" {
		return m.RootNamespace
	}
	if m.AssemblyName != "" {
		return m.AssemblyName
	}
	base := filepath.Base(filepath.FromSlash(m.Path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsTestProject reports whether any package reference exactly matches one of
// the given markers. A nil markers slice means DefaultTestMarkers.
func (m *Manifest) IsTestProject(markers []string) bool {
	if markers == nil {
		markers = DefaultTestMarkers
	}
	for _, ref := range m.PackageReferences {
		for _, marker := range markers {
			if ref == marker {
				return true
			}
		}
	}
	return false
}

// MultiTargeted reports whether the project declares more than one framework.
func (m *Manifest) MultiTargeted() bool {
	return len(m.TargetFrameworks) > 1
}

// PrimaryFramework returns the framework with the highest version, preferring
// the first declared one on ties. Returns nil when no framework is declared.
func (m *Manifest) PrimaryFramework() *Framework {
	var best *Framework
	for i := range m.TargetFrameworks {
		fw := &m.TargetFrameworks[i]
		if best == nil {
			best = fw
			continue
		}
		if fw.Version != nil && (best.Version == nil || fw.Version.GreaterThan(best.Version)) {
			best = fw
		}
	}
	return best
}

// IsManifestFile reports whether name has a manifest extension.
func IsManifestFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
