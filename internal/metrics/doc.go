// Package metrics records Prometheus metrics for reconciliation passes. A CLI
// run is short-lived, so metrics are written to a node-exporter textfile
// instead of being scraped.
package metrics
