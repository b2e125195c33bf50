package cli

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/Masterminds/semver/v3"
	"github.com/dnsync-labs/dnsync/internal/bootstrap"
	"github.com/dnsync-labs/dnsync/internal/discovery"
	"github.com/dnsync-labs/dnsync/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	checkSDK      bool
	checkRegistry bool
)

func init() {
	doctorCmd.Flags().BoolVar(&checkSDK, "check-sdk", false, "Verify the dotnet SDK is installed and recent enough")
	doctorCmd.Flags().BoolVar(&checkRegistry, "check-registry", false, "Validate registry entries and their manifests")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the workspace",
	Long:  `Run diagnostic checks on the .NET SDK and the workspace registry.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all := !checkSDK && !checkRegistry
		out := cmd.OutOrStdout()
		failed := 0

		if all || checkSDK {
			failed += runSDKCheck(cmd, out)
		}
		if all || checkRegistry {
			failed += runRegistryCheck(cmd, out)
		}

		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		return nil
	},
}

// runSDKCheck reports the dotnet binary and SDK version. It returns the
// number of failed checks.
func runSDKCheck(cmd *cobra.Command, w io.Writer) int {
	fmt.Fprintln(w, "SDK check:")

	name := current.cfg.Dotnet.Path
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(w, "  [MISS] %s not found\n", name)
		return 1
	}
	fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, path)

	v, err := newClient(cmd, current).Version(cmd.Context())
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] cannot determine SDK version: %v\n", err)
		return 1
	}
	minSDK := current.cfg.Dotnet.MinSDK
	if minSDK == "" {
		minSDK = bootstrap.DefaultMinSDK
	}
	minimum, err := semver.NewVersion(minSDK)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] invalid dotnet.minSdk %q: %v\n", minSDK, err)
		return 1
	}
	if v.LessThan(minimum) {
		fmt.Fprintf(w, "  [WARN] SDK %s is older than the supported minimum %s\n", v, minimum)
		return 0
	}
	fmt.Fprintf(w, "  [ OK ] SDK %s (minimum %s)\n", v, minimum)
	return 0
}

// runRegistryCheck validates every registry entry against the schema and
// checks that its root still holds a manifest.
func runRegistryCheck(cmd *cobra.Command, w io.Writer) int {
	fmt.Fprintln(w, "Registry check:")

	entries, err := current.workspace().Registry.Entries(cmd.Context())
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "  [INFO] No projects registered")
		return 0
	}

	strict := &discovery.Locator{Root: current.root, Strict: true}
	failed := 0
	for _, e := range entries {
		if err := workspace.ValidateEntry(e); err != nil {
			var ve *workspace.ValidationError
			if errors.As(err, &ve) {
				fmt.Fprintf(w, "  [FAIL] %s: %d validation issue(s):\n", e.Name, len(ve.Issues))
				for _, issue := range ve.Issues {
					if issue.Path != "" {
						fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
					} else {
						fmt.Fprintf(w, "    - %s\n", issue.Message)
					}
				}
			} else {
				fmt.Fprintf(w, "  [FAIL] %s: %v\n", e.Name, err)
			}
			failed++
			continue
		}

		m, err := strict.Locate(e.Root)
		var amb *discovery.AmbiguousManifestError
		switch {
		case errors.Is(err, discovery.ErrNotFound):
			// Projects registered by other tools may have no .NET manifest.
			fmt.Fprintf(w, "  [INFO] %s: no .NET manifest in %s\n", e.Name, e.Root)
		case errors.As(err, &amb):
			fmt.Fprintf(w, "  [WARN] %s: %v\n", e.Name, amb)
		case err != nil:
			fmt.Fprintf(w, "  [FAIL] %s: %v\n", e.Name, err)
			failed++
		default:
			fmt.Fprintf(w, "  [ OK ] %s -> %s\n", e.Name, m)
		}
	}
	return failed
}
