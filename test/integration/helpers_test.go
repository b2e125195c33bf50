//go:build integration

package integration_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/dnsync-labs/dnsync/internal/bootstrap"
	"github.com/dnsync-labs/dnsync/internal/reconcile"
	"github.com/dnsync-labs/dnsync/internal/toolchain"
	"github.com/dnsync-labs/dnsync/internal/workspace"
)

// testEnv holds an isolated workspace wired to the real dotnet CLI.
type testEnv struct {
	Root       string
	Workspace  *workspace.Workspace
	Client     *toolchain.ExecClient
	Reconciler *reconcile.Reconciler
	Output     *bytes.Buffer // dotnet and bootstrap output
}

// setupTestEnv creates a temp workspace. Tests are skipped when no dotnet SDK
// is installed.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if _, err := exec.LookPath("dotnet"); err != nil {
		t.Skip("dotnet SDK not available, skipping")
	}

	root := t.TempDir()
	// Keep dotnet's first-run state out of the developer's home directory.
	t.Setenv("DOTNET_CLI_HOME", t.TempDir())

	out := &bytes.Buffer{}
	env := &testEnv{
		Root: root,
		Workspace: &workspace.Workspace{
			Root:     root,
			Registry: workspace.NewFileRegistry(filepath.Join(root, "workspace.yaml")),
		},
		Client: &toolchain.ExecClient{Dir: root, Stdout: out, Stderr: out},
		Output: out,
	}
	env.Reconciler = reconcile.New(&bootstrap.Initializer{Out: out}, reconcile.Options{})
	return env
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
	}
}
