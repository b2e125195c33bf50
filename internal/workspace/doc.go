// Package workspace models the host workspace's project registry. It defines
// the Entry and TargetSpec types, the Registry interface the reconciler talks
// to, an in-memory implementation for tests and dry runs, and a YAML
// file-backed implementation that merges writes into an existing document.
//
// Entries are validated against an embedded JSON schema before they are
// persisted.
package workspace
