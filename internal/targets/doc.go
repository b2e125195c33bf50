// Package targets builds the task definitions (build, serve, test) that a
// registry entry exposes for a .NET project.
package targets
