package testutil

import (
	"fmt"
	"testing"

	"github.com/dnsync-labs/dnsync/internal/workspace"
)

// AppManifest returns an SDK-style web project with the given root namespace.
func AppManifest(rootNamespace string) string {
	return fmt.Sprintf(`<Project Sdk="Microsoft.NET.Sdk.Web">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <RootNamespace>%s</RootNamespace>
  </PropertyGroup>
</Project>
`, rootNamespace)
}

// TestManifest returns a test project referencing the test SDK.
func TestManifest(rootNamespace string) string {
	return fmt.Sprintf(`<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <RootNamespace>%s</RootNamespace>
  </PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Microsoft.NET.Test.Sdk" Version="17.8.0" />
    <PackageReference Include="xunit" Version="2.6.2" />
  </ItemGroup>
</Project>
`, rootNamespace)
}

// Workspace creates a temporary workspace containing files (relative path to
// content) and returns it with an empty in-memory registry.
func Workspace(t *testing.T, files map[string]string) (*workspace.Workspace, *workspace.MemoryRegistry) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		if err := WriteFile(root, rel, content); err != nil {
			t.Fatalf("writing %s: %v", rel, err)
		}
	}
	reg := workspace.NewMemoryRegistry()
	return &workspace.Workspace{Root: root, Registry: reg}, reg
}
