// Package discovery finds .NET project manifests in a workspace. Locate
// resolves the single canonical manifest of a directory, applying a
// deterministic tie-break when several exist. Glob scans the tree with
// doublestar patterns and drops ignored paths such as build output folders.
//
// All returned paths are relative to the workspace root and slash separated,
// so they can be compared directly with registry roots.
package discovery
