package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ExecClient runs the dotnet binary.
type ExecClient struct {
	// Path is the dotnet executable; "dotnet" is looked up on PATH when empty.
	Path string
	// Dir is the working directory of every command.
	Dir string
	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// ExitError is returned when dotnet exits with a non-zero status.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("dotnet %s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Version runs `dotnet --version`.
func (c *ExecClient) Version(ctx context.Context) (*semver.Version, error) {
	out, err := c.output(ctx, "--version")
	if err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(out)
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing dotnet version %q: %w", raw, err)
	}
	return v, nil
}

// NewToolManifest runs `dotnet new tool-manifest` in dir.
func (c *ExecClient) NewToolManifest(ctx context.Context, dir string) error {
	return c.run(ctx, dir, "new", "tool-manifest")
}

// New runs `dotnet new <template> --output <outputDir> --name <name>`.
func (c *ExecClient) New(ctx context.Context, template, outputDir, name string) error {
	return c.run(ctx, c.Dir, "new", template, "--output", outputDir, "--name", name)
}

// AddReference runs `dotnet add <project> reference <reference>`.
func (c *ExecClient) AddReference(ctx context.Context, project, reference string) error {
	return c.run(ctx, c.Dir, "add", project, "reference", reference)
}

// run executes dotnet in dir, streaming output to the configured writers.
func (c *ExecClient) run(ctx context.Context, dir string, args ...string) error {
	stdout := c.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	return c.invoke(ctx, dir, stdout, args...)
}

// output executes dotnet and returns its stdout without streaming it.
func (c *ExecClient) output(ctx context.Context, args ...string) (string, error) {
	var buf bytes.Buffer
	if err := c.invoke(ctx, c.Dir, &buf, args...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *ExecClient) invoke(ctx context.Context, dir string, stdout io.Writer, args ...string) error {
	bin, err := c.binary()
	if err != nil {
		return err
	}

	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	var stderrBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Env = buildEnv(os.Environ())
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	err = cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Args: args, ExitCode: exitErr.ExitCode(), Stderr: stderrBuf.String()}
	}
	return fmt.Errorf("running dotnet %s: %w", strings.Join(args, " "), err)
}

func (c *ExecClient) binary() (string, error) {
	name := c.Path
	if name == "" {
		name = "dotnet"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("dotnet SDK not found (%s): %w", name, err)
	}
	return bin, nil
}

// buildEnv inherits env and silences the SDK's first-run output.
func buildEnv(env []string) []string {
	env = setEnv(env, "DOTNET_CLI_TELEMETRY_OPTOUT", "1")
	env = setEnv(env, "DOTNET_NOLOGO", "1")
	env = setEnv(env, "DOTNET_SKIP_FIRST_TIME_EXPERIENCE", "1")
	return env
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
