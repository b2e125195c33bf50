package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// Call is one recorded FakeClient invocation.
type Call struct {
	Method string
	Args   []string
}

// FakeClient is an in-process stand-in for the dotnet CLI. It records every
// call and performs the file-system side effects the real commands have.
type FakeClient struct {
	SDKVersion string // returned by Version; "8.0.100" when empty
	VersionErr error
	Err        error // returned by every other method when set

	mu    sync.Mutex
	calls []Call
}

func (f *FakeClient) record(method string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of the recorded calls in order.
func (f *FakeClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Version implements toolchain.Client.
func (f *FakeClient) Version(_ context.Context) (*semver.Version, error) {
	f.record("Version")
	if f.VersionErr != nil {
		return nil, f.VersionErr
	}
	v := f.SDKVersion
	if v == "" {
		v = "8.0.100"
	}
	return semver.NewVersion(v)
}

// NewToolManifest implements toolchain.Client and writes an empty tool manifest.
func (f *FakeClient) NewToolManifest(_ context.Context, dir string) error {
	f.record("NewToolManifest", dir)
	if f.Err != nil {
		return f.Err
	}
	return WriteFile(dir, ".config/dotnet-tools.json", `{"version": 1, "isRoot": true, "tools": {}}`)
}

// New implements toolchain.Client. It writes a minimal SDK-style project
// named name into outputDir; test templates reference the test SDK.
func (f *FakeClient) New(_ context.Context, template, outputDir, name string) error {
	f.record("New", template, outputDir, name)
	if f.Err != nil {
		return f.Err
	}
	sdk := "Microsoft.NET.Sdk"
	if template == "webapi" {
		sdk = "Microsoft.NET.Sdk.Web"
	}
	var refs string
	if strings.Contains(template, "unit") || template == "mstest" {
		refs = `  <ItemGroup>
    <PackageReference Include="Microsoft.NET.Test.Sdk" Version="17.8.0" />
  </ItemGroup>
`
	}
	content := fmt.Sprintf(`<Project Sdk=%q>
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <RootNamespace>%s</RootNamespace>
  </PropertyGroup>
%s</Project>
`, sdk, name, refs)
	return WriteFile(outputDir, name+".csproj", content)
}

// AddReference implements toolchain.Client.
func (f *FakeClient) AddReference(_ context.Context, project, reference string) error {
	f.record("AddReference", project, reference)
	return f.Err
}

// WriteFile writes content to dir/rel, creating parent directories.
func WriteFile(dir, rel, content string) error {
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
