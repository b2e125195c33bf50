package bootstrap

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/semver/v3"
	"github.com/dnsync-labs/dnsync/internal/branding"
	"github.com/dnsync-labs/dnsync/internal/config"
	"github.com/dnsync-labs/dnsync/internal/ctxlog"
	"github.com/dnsync-labs/dnsync/internal/toolchain"
	"github.com/dnsync-labs/dnsync/internal/workspace"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Files created in the workspace root.
const (
	ToolManifestPath = ".config/dotnet-tools.json"
	BuildPropsFile   = "Directory.Build.props"
)

// Defaults for Options fields left empty.
const (
	DefaultMinSDK    = "6.0.0"
	DefaultOutputDir = "dist"
)

// Options tune a bootstrap run.
type Options struct {
	MinSDK    string // lowest supported SDK version; older SDKs produce a warning
	OutputDir string // build output directory written into Directory.Build.props
}

func (o Options) withDefaults() Options {
	if o.MinSDK == "" {
		o.MinSDK = DefaultMinSDK
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	return o
}

// Bootstrapper prepares a workspace. A nil opts means the implementation's
// defaults.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, ws *workspace.Workspace, opts *Options, client toolchain.Client) error
}

// Func adapts a plain function to the Bootstrapper interface.
type Func func(ctx context.Context, ws *workspace.Workspace, opts *Options, client toolchain.Client) error

// Bootstrap calls f.
func (f Func) Bootstrap(ctx context.Context, ws *workspace.Workspace, opts *Options, client toolchain.Client) error {
	return f(ctx, ws, opts, client)
}

// Initializer is the default Bootstrapper.
type Initializer struct {
	// Defaults is used when Bootstrap receives nil options.
	Defaults Options
	// Out receives one progress line per file; nil discards them.
	Out io.Writer
	// DryRun reports missing files without creating them.
	DryRun bool
}

// Bootstrap checks the SDK and creates whatever workspace files are missing.
// When the SDK cannot be queried the tool manifest step is skipped with a
// warning; the remaining files do not need dotnet.
func (b *Initializer) Bootstrap(ctx context.Context, ws *workspace.Workspace, opts *Options, client toolchain.Client) error {
	logger := ctxlog.FromContext(ctx)
	o := b.Defaults
	if opts != nil {
		o = *opts
	}
	o = o.withDefaults()

	w := b.Out
	if w == nil {
		w = io.Discard
	}

	minimum, err := semver.NewVersion(o.MinSDK)
	if err != nil {
		return fmt.Errorf("invalid minimum SDK version %q: %w", o.MinSDK, err)
	}

	sdkAvailable := true
	if err := checkSDK(ctx, client, minimum); err != nil {
		var old *OutdatedSDKError
		if !errors.As(err, &old) {
			sdkAvailable = false
		}
		logger.Warn("dotnet SDK check failed", "err", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	manifestPath := filepath.Join(ws.Root, filepath.FromSlash(ToolManifestPath))
	switch exists, err := fileExists(manifestPath); {
	case err != nil:
		return err
	case exists:
		fmt.Fprintf(w, "  [SKIP] %s already exists\n", ToolManifestPath)
	case !sdkAvailable:
		fmt.Fprintf(w, "  [WARN] %s not created: dotnet SDK unavailable\n", ToolManifestPath)
	case b.DryRun:
		fmt.Fprintf(w, "  [SKIP] %s would be created (dry run)\n", ToolManifestPath)
	default:
		if err := client.NewToolManifest(ctx, ws.Root); err != nil {
			return fmt.Errorf("creating dotnet tool manifest: %w", err)
		}
		fmt.Fprintf(w, "  [ OK ] Created %s\n", ToolManifestPath)
	}

	props, err := renderBuildProps(o)
	if err != nil {
		return err
	}
	if err := ensureFile(w, ws.Root, BuildPropsFile, props, b.DryRun); err != nil {
		return err
	}

	if err := ensureFile(w, ws.Root, branding.ConfigFile(), []byte(config.DefaultFileContent), b.DryRun); err != nil {
		return err
	}

	logger.Debug("workspace bootstrapped", "root", ws.Root)
	return nil
}

// OutdatedSDKError reports an installed SDK older than the supported minimum.
type OutdatedSDKError struct {
	Installed *semver.Version
	Minimum   *semver.Version
}

// Error implements the error interface.
func (e *OutdatedSDKError) Error() string {
	return fmt.Sprintf("dotnet SDK %s is older than the supported minimum %s", e.Installed, e.Minimum)
}

// checkSDK returns an *OutdatedSDKError when the SDK is too old, or another
// error when its version cannot be determined.
func checkSDK(ctx context.Context, client toolchain.Client, minimum *semver.Version) error {
	installed, err := client.Version(ctx)
	if err != nil {
		return fmt.Errorf("querying dotnet SDK version: %w", err)
	}
	if installed.LessThan(minimum) {
		return &OutdatedSDKError{Installed: installed, Minimum: minimum}
	}
	return nil
}

func renderBuildProps(o Options) ([]byte, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/Directory.Build.props.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing build props template: %w", err)
	}
	var buf bytes.Buffer
	data := struct{ Tool, OutputDir string }{branding.CLIName(), o.OutputDir}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering build props: %w", err)
	}
	return buf.Bytes(), nil
}

// ensureFile creates root/name with content if it doesn't exist.
func ensureFile(w io.Writer, root, name string, content []byte, dryRun bool) error {
	path := filepath.Join(root, name)
	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintf(w, "  [SKIP] %s already exists\n", name)
		return nil
	}
	if dryRun {
		fmt.Fprintf(w, "  [SKIP] %s would be created (dry run)\n", name)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", name)
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
}
