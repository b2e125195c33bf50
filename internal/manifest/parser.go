package manifest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// ParseError is returned when a manifest's content cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing manifest %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error { return e.Err }

type projectXML struct {
	XMLName        xml.Name           `xml:"Project"`
	Sdk            string             `xml:"Sdk,attr"`
	SdkElements    []sdkXML           `xml:"Sdk"`
	PropertyGroups []propertyGroupXML `xml:"PropertyGroup"`
	ItemGroups     []itemGroupXML     `xml:"ItemGroup"`
}

type sdkXML struct {
	Name string `xml:"Name,attr"`
}

type propertyGroupXML struct {
	RootNamespace          string `xml:"RootNamespace"`
	AssemblyName           string `xml:"AssemblyName"`
	OutputType             string `xml:"OutputType"`
	TargetFramework        string `xml:"TargetFramework"`
	TargetFrameworks       string `xml:"TargetFrameworks"`
	TargetFrameworkVersion string `xml:"TargetFrameworkVersion"`
}

type itemGroupXML struct {
	PackageReferences []packageReferenceXML `xml:"PackageReference"`
}

type packageReferenceXML struct {
	Include string `xml:"Include,attr"`
}

// ParseFile reads the manifest at path and parses it. Filesystem errors are
// returned as-is; only content errors become a *ParseError.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes manifest content. path is used for error messages and for the
// identity fallback when no RootNamespace or AssemblyName is declared.
func Parse(path string, content []byte) (*Manifest, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("empty document")}
	}

	var doc projectXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	m := &Manifest{
		Path: path,
		Sdk:  strings.TrimSpace(doc.Sdk),
	}
	if m.Sdk == "" && len(doc.SdkElements) > 0 {
		m.Sdk = strings.TrimSpace(doc.SdkElements[0].Name)
	}

	var frameworks, legacyVersion string
	for _, pg := range doc.PropertyGroups {
		firstNonEmpty(&m.RootNamespace, pg.RootNamespace)
		firstNonEmpty(&m.AssemblyName, pg.AssemblyName)
		firstNonEmpty(&m.OutputType, pg.OutputType)
		firstNonEmpty(&frameworks, pg.TargetFrameworks)
		firstNonEmpty(&frameworks, pg.TargetFramework)
		firstNonEmpty(&legacyVersion, pg.TargetFrameworkVersion)
	}
	if frameworks == "" && legacyVersion != "" {
		frameworks = legacyMoniker(legacyVersion)
	}

	for _, moniker := range strings.Split(frameworks, ";") {
		if strings.TrimSpace(moniker) == "" {
			continue
		}
		// A moniker with an unparsable version still names a framework.
		fw, _ := ParseFramework(moniker)
		m.TargetFrameworks = append(m.TargetFrameworks, fw)
	}

	seen := make(map[string]bool)
	for _, ig := range doc.ItemGroups {
		for _, ref := range ig.PackageReferences {
			name := strings.TrimSpace(ref.Include)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			m.PackageReferences = append(m.PackageReferences, name)
		}
	}

	return m, nil
}

// firstNonEmpty assigns value to dst unless dst is already set.
func firstNonEmpty(dst *string, value string) {
	if *dst != "" {
		return
	}
	*dst = strings.TrimSpace(value)
}
