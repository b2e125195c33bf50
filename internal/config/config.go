package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dnsync-labs/dnsync/internal/branding"
	"github.com/spf13/viper"
)

const fileType = "yaml"

// Config is the decoded workspace configuration.
type Config struct {
	Registry  string    `mapstructure:"registry"`
	Layout    Layout    `mapstructure:"layout"`
	Discovery Discovery `mapstructure:"discovery"`
	Targets   Targets   `mapstructure:"targets"`
	Reconcile Reconcile `mapstructure:"reconcile"`
	Dotnet    Dotnet    `mapstructure:"dotnet"`
	Log       Log       `mapstructure:"log"`
}

// Layout names the workspace directories scanned for projects.
type Layout struct {
	AppsDir string `mapstructure:"appsDir"`
	LibsDir string `mapstructure:"libsDir"`
}

// Discovery controls how manifests are found and classified.
type Discovery struct {
	Extensions  []string `mapstructure:"extensions"`
	Ignore      []string `mapstructure:"ignore"`
	TestMarkers []string `mapstructure:"testMarkers"`
	Strict      bool     `mapstructure:"strict"`
}

// Targets controls the synthesized registry targets.
type Targets struct {
	ExecutorPrefix string `mapstructure:"executorPrefix"`
	OutputDir      string `mapstructure:"outputDir"`
}

// Reconcile tunes the reconciliation pass.
type Reconcile struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Dotnet locates and gates the .NET SDK.
type Dotnet struct {
	Path   string `mapstructure:"path"`
	MinSDK string `mapstructure:"minSdk"`
}

// Log configures the CLI logger.
type Log struct {
	Level string `mapstructure:"level"`
}

// defaults maps every known key to its default value. Viper only binds
// environment variables for keys it knows about, so every key must appear here.
var defaults = map[string]any{
	"registry":               branding.RegistryFile(),
	"layout.appsDir":         "apps",
	"layout.libsDir":         "libs",
	"discovery.extensions":   []string{".csproj", ".fsproj", ".vbproj"},
	"discovery.ignore":       []string{"**/bin/**", "**/obj/**", "**/node_modules/**"},
	"discovery.testMarkers":  []string{"Microsoft.NET.Test.Sdk"},
	"discovery.strict":       false,
	"targets.executorPrefix": "dotnet",
	"targets.outputDir":      "dist",
	"reconcile.concurrency":  4,
	"dotnet.path":            "dotnet",
	"dotnet.minSdk":          "6.0.0",
	"log.level":              "info",
}

// DefaultFileContent is written by the bootstrap step when a workspace has no
// config file yet.
const DefaultFileContent = `# dnsync workspace configuration.
registry: workspace.yaml
layout:
  appsDir: apps
  libsDir: libs
discovery:
  testMarkers:
    - Microsoft.NET.Test.Sdk
  strict: false
targets:
  executorPrefix: dotnet
reconcile:
  concurrency: 4
`

// FilePath returns the full path to the config file of the workspace at root.
func FilePath(root string) string {
	return filepath.Join(root, branding.ConfigFile())
}

// newViper builds a Viper instance bound to the given config file and the
// DNSYNC_* environment.
func newViper(file string) *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigFile(file)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the workspace configuration. When file is empty the default
// location under root is used. A missing file is not an error.
func Load(root, file string) (*Config, error) {
	if file == "" {
		file = FilePath(root)
	}

	v := newViper(file)
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", file, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	var cfg Config
	// Decoding the static defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks the decoded values for consistency.
func (c *Config) Validate() error {
	var errs []error
	if c.Registry == "" {
		errs = append(errs, errors.New("registry must not be empty"))
	}
	if c.Layout.AppsDir == "" && c.Layout.LibsDir == "" {
		errs = append(errs, errors.New("at least one of layout.appsDir and layout.libsDir must be set"))
	}
	if len(c.Discovery.Extensions) == 0 {
		errs = append(errs, errors.New("discovery.extensions must not be empty"))
	}
	for _, ext := range c.Discovery.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("discovery.extensions: %q must start with a dot", ext))
		}
	}
	if c.Reconcile.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("reconcile.concurrency must be at least 1, got %d", c.Reconcile.Concurrency))
	}
	if c.Targets.ExecutorPrefix == "" {
		errs = append(errs, errors.New("targets.executorPrefix must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// RegistryPath resolves the registry file against the workspace root.
func (c *Config) RegistryPath(root string) string {
	if filepath.IsAbs(c.Registry) {
		return c.Registry
	}
	return filepath.Join(root, c.Registry)
}

// Get returns a config value by key from the workspace at root. Returns an
// empty string if the key is unset.
func Get(root, key string) (string, error) {
	v := newViper(FilePath(root))
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return v.GetString(key), nil
}

// Set writes a key-value pair into the workspace config file, creating the
// file if needed.
func Set(root, key, value string) error {
	file := FilePath(root)
	v := newViper(file)
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}

	v.Set(key, value)

	if _, err := os.Stat(file); os.IsNotExist(err) {
		f, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", file, err)
		}
		f.Close()
	}

	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
