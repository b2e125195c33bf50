// Package naming derives registry names from .NET project identities and
// guards the uniqueness of those names across the workspace registry.
package naming
