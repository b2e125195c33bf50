// Package scaffold creates new .NET projects with dotnet templates and
// registers them. It powers the "dnsync new" command: the project is placed
// in the apps or libs directory according to its kind, optionally wired to
// the project it tests, and then picked up by a reconciliation pass.
package scaffold
