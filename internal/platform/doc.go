// Package platform provides cross-platform filesystem operations: permission
// management that degrades to a no-op on Windows, and atomic file replacement
// used when rewriting workspace files.
package platform
