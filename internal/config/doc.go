// Package config manages workspace-level settings stored in dnsync.yaml at
// the workspace root, overlaid with DNSYNC_* environment variables. It
// decodes them into a typed Config with defaults for every key and backs the
// "config get" and "config set" commands.
package config
