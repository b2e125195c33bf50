// Package bootstrap prepares a workspace for .NET projects before the first
// registry write: it checks the installed SDK, creates the dotnet local tool
// manifest and writes the shared MSBuild props and the dnsync config file.
// Files that already exist are never modified.
package bootstrap
