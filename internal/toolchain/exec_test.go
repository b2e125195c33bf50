package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeDotnet writes a shell script that records its arguments and environment
// and prints "8.0.100" for --version.
func fakeDotnet(t *testing.T, exitCode int) (bin, logFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	dir := t.TempDir()
	logFile = filepath.Join(dir, "calls.log")
	script := `#!/bin/sh
echo "$PWD|$*|$DOTNET_CLI_TELEMETRY_OPTOUT|$DOTNET_NOLOGO" >> "` + logFile + `"
if [ "$1" = "--version" ]; then
  echo "8.0.100"
fi
echo "warning from dotnet" >&2
exit ` + string(rune('0'+exitCode)) + `
`
	bin = filepath.Join(dir, "dotnet")
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return bin, logFile
}

func readCalls(t *testing.T, logFile string) []string {
	t.Helper()
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestExecClient_Version(t *testing.T) {
	bin, logFile := fakeDotnet(t, 0)
	c := &ExecClient{Path: bin, Dir: t.TempDir(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	v, err := c.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v.String() != "8.0.100" {
		t.Errorf("Version = %s, want 8.0.100", v)
	}

	calls := readCalls(t, logFile)
	if !strings.HasSuffix(calls[0], "|--version|1|1") {
		t.Errorf("call = %q, want --version with telemetry and logo opt-out", calls[0])
	}
}

func TestExecClient_Commands(t *testing.T) {
	bin, logFile := fakeDotnet(t, 0)
	workDir := t.TempDir()
	manifestDir := t.TempDir()
	var stdout, stderr bytes.Buffer
	c := &ExecClient{Path: bin, Dir: workDir, Stdout: &stdout, Stderr: &stderr}
	ctx := context.Background()

	if err := c.NewToolManifest(ctx, manifestDir); err != nil {
		t.Fatalf("NewToolManifest: %v", err)
	}
	if err := c.New(ctx, "webapi", "apps/my-api", "MyApi"); err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.AddReference(ctx, "apps/my-api/MyApi.csproj", "libs/core/Core.csproj"); err != nil {
		t.Fatalf("AddReference: %v", err)
	}

	calls := readCalls(t, logFile)
	want := []struct{ dir, args string }{
		{manifestDir, "new tool-manifest"},
		{workDir, "new webapi --output apps/my-api --name MyApi"},
		{workDir, "add apps/my-api/MyApi.csproj reference libs/core/Core.csproj"},
	}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d: %v", len(calls), len(want), calls)
	}
	for i, w := range want {
		parts := strings.Split(calls[i], "|")
		// macOS temp dirs resolve through /private.
		if !strings.HasSuffix(parts[0], w.dir) {
			t.Errorf("call %d dir = %q, want %q", i, parts[0], w.dir)
		}
		if parts[1] != w.args {
			t.Errorf("call %d args = %q, want %q", i, parts[1], w.args)
		}
	}
	if !strings.Contains(stderr.String(), "warning from dotnet") {
		t.Errorf("stderr not streamed: %q", stderr.String())
	}
}

func TestExecClient_ExitError(t *testing.T) {
	bin, _ := fakeDotnet(t, 3)
	c := &ExecClient{Path: bin, Dir: t.TempDir(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	err := c.New(context.Background(), "classlib", "libs/x", "X")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", exitErr.ExitCode)
	}
	if !strings.Contains(exitErr.Error(), "warning from dotnet") {
		t.Errorf("Error() = %q, want captured stderr", exitErr.Error())
	}
}

func TestExecClient_MissingBinary(t *testing.T) {
	c := &ExecClient{Path: filepath.Join(t.TempDir(), "no-such-dotnet")}
	if _, err := c.Version(context.Background()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestSetEnv(t *testing.T) {
	env := setEnv([]string{"A=1", "DOTNET_NOLOGO=0"}, "DOTNET_NOLOGO", "1")
	if env[1] != "DOTNET_NOLOGO=1" || len(env) != 2 {
		t.Errorf("setEnv replaced incorrectly: %v", env)
	}
	env = setEnv(env, "B", "2")
	if env[len(env)-1] != "B=2" {
		t.Errorf("setEnv did not append: %v", env)
	}
}
