package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseFramework parses a target framework moniker such as "net8.0",
// "net8.0-windows", "netcoreapp3.1", "netstandard2.0" or "net472".
// Monikers of other platforms (uap10.0, monoandroid90, tizen40) are kept
// verbatim with an empty Family and no Version.
func ParseFramework(moniker string) (Framework, error) {
	moniker = strings.TrimSpace(moniker)
	fw := Framework{Moniker: moniker}
	if moniker == "" {
		return fw, fmt.Errorf("empty target framework")
	}
	if strings.HasPrefix(moniker, "$(") {
		// MSBuild property reference, only resolvable by MSBuild itself.
		return fw, nil
	}

	name := strings.ToLower(moniker)
	if i := strings.IndexByte(name, '-'); i >= 0 {
		fw.Platform = name[i+1:]
		name = name[:i]
	}

	var digits string
	switch {
	case strings.HasPrefix(name, "netcoreapp"):
		fw.Family = "netcoreapp"
		digits = strings.TrimPrefix(name, "netcoreapp")
	case strings.HasPrefix(name, "netstandard"):
		fw.Family = "netstandard"
		digits = strings.TrimPrefix(name, "netstandard")
	case strings.HasPrefix(name, "net"):
		digits = strings.TrimPrefix(name, "net")
		fw.Family = "net"
		if !strings.Contains(digits, ".") {
			// .NET Framework monikers pack one digit per component: net472 is 4.7.2.
			fw.Family = "netframework"
			digits = strings.Join(strings.Split(digits, ""), ".")
		}
	default:
		return fw, nil
	}

	if digits == "" {
		return fw, nil
	}
	v, err := semver.NewVersion(digits)
	if err != nil {
		return fw, fmt.Errorf("parsing version of target framework %q: %w", moniker, err)
	}
	fw.Version = v
	return fw, nil
}

// legacyMoniker converts a legacy TargetFrameworkVersion value (e.g., "v4.7.2")
// into its short moniker ("net472").
func legacyMoniker(version string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	return "net" + strings.ReplaceAll(version, ".", "")
}
