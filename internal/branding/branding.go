// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed, so a fork only edits the YAML file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	EnvPrefix    string `yaml:"env_prefix"`
	ConfigFile   string `yaml:"config_file"`
	RegistryFile string `yaml:"registry_file"`
	GoModule     string `yaml:"go_module"`
	GitHubRepo   string `yaml:"github_repo"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:      "dnsync",
			DisplayName:  "dnsync",
			Description:  "Discover .NET projects and register them in the workspace",
			EnvPrefix:    "DNSYNC",
			ConfigFile:   "dnsync.yaml",
			RegistryFile: "workspace.yaml",
			GoModule:     "github.com/dnsync-labs/dnsync",
			GitHubRepo:   "dnsync-labs/dnsync",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "dnsync").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "DNSYNC").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ConfigFile returns the workspace config file name (e.g., "dnsync.yaml").
func ConfigFile() string { load(); return defaults.ConfigFile }

// RegistryFile returns the default project registry file name.
func RegistryFile() string { load(); return defaults.RegistryFile }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" string.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("log_level") → "DNSYNC_LOG_LEVEL".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
