package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/dnsync-labs/dnsync/internal/bootstrap"
	"github.com/dnsync-labs/dnsync/internal/branding"
	"github.com/dnsync-labs/dnsync/internal/config"
	"github.com/dnsync-labs/dnsync/internal/ctxlog"
	"github.com/dnsync-labs/dnsync/internal/toolchain"
	"github.com/dnsync-labs/dnsync/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"

	flagCwd      string
	flagLogLevel string
	flagConfig   string
)

// skipConfig marks commands that must work with a missing or broken config.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: TitleStyle.Render(branding.DisplayName()) + SubtitleStyle.Render(" - "+branding.Description()) + `

` + branding.DisplayName() + ` finds .NET projects (csproj, fsproj, vbproj) under the apps and
libs directories of a monorepo and registers each new one in the workspace
registry with build, serve and test targets. Existing entries are never
removed or overwritten.

` + SubtitleStyle.Render("Examples:") + `
  ` + branding.CLIName() + ` import             Register new projects
  ` + branding.CLIName() + ` import --dry-run   Show what would be registered
  ` + branding.CLIName() + ` new app MyApi      Create and register a web API
  ` + branding.CLIName() + ` list               List registered projects`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCwd, "cwd", "", "workspace root (default is the current directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default is <cwd>/"+branding.ConfigFile()+")")
}

// app is the state shared by commands after setup.
type app struct {
	root   string
	cfg    *config.Config
	logger *log.Logger
}

var current *app

// newClient creates the toolchain client for a command. Tests replace it.
var newClient = func(cmd *cobra.Command, a *app) toolchain.Client {
	return &toolchain.ExecClient{
		Path: a.cfg.Dotnet.Path,
		Dir:  a.root,
		// dotnet output goes to stderr so stdout stays machine-readable.
		Stdout: cmd.ErrOrStderr(),
		Stderr: cmd.ErrOrStderr(),
	}
}

// setup resolves the workspace root, loads the config and attaches a logger
// to the command context.
func setup(cmd *cobra.Command, _ []string) error {
	root, err := resolveRoot(flagCwd)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if cmd.Annotations[skipConfig] == "" {
		if cfg, err = config.Load(root, flagConfig); err != nil {
			return err
		}
	}

	level := flagLogLevel
	if level == "" {
		level = cfg.Log.Level
	}
	logger, err := ctxlog.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(ctxlog.WithLogger(ctx, logger))

	current = &app{root: root, cfg: cfg, logger: logger}
	logger.Debug("workspace", "root", root, "registry", cfg.RegistryPath(root))
	return nil
}

func resolveRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return abs, nil
}

func (a *app) workspace() *workspace.Workspace {
	return &workspace.Workspace{
		Root:     a.root,
		Registry: workspace.NewFileRegistry(a.cfg.RegistryPath(a.root)),
	}
}

func (a *app) bootstrapper(cmd *cobra.Command) *bootstrap.Initializer {
	return &bootstrap.Initializer{
		Defaults: bootstrap.Options{
			MinSDK:    a.cfg.Dotnet.MinSDK,
			OutputDir: a.cfg.Targets.OutputDir,
		},
		Out: cmd.ErrOrStderr(),
	}
}

func versionString() string {
	if buildVersion == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", buildVersion, buildCommit, buildDate)
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
}
