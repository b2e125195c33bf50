// Package manifest parses .NET project files (csproj, fsproj, vbproj) into a
// strict Manifest value. Both SDK-style and legacy namespaced MSBuild
// documents are accepted; optional properties fall back to documented
// defaults at parse time. It also classifies a manifest as a test project
// from its package references.
package manifest
