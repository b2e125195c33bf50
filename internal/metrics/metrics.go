package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pass results.
const (
	ResultAdded   = "added"
	ResultNoop    = "noop"
	ResultDryRun  = "dry_run"
	ResultAborted = "aborted"
)

// Metrics holds the collectors of one process. All methods are safe on a nil
// receiver, so callers can leave metrics disabled.
type Metrics struct {
	Registry *prometheus.Registry

	passTotal           *prometheus.CounterVec
	manifestsDiscovered prometheus.Gauge
	projectsAddedTotal  *prometheus.CounterVec
	parseFailuresTotal  prometheus.Counter
	passDuration        prometheus.Histogram
}

// New creates Metrics registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		passTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnsync_reconcile_pass_total",
				Help: "Number of reconciliation passes by result.",
			},
			[]string{"result"},
		),
		manifestsDiscovered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dnsync_reconcile_manifests_discovered",
				Help: "Number of manifests found by the glob scan of the last pass.",
			},
		),
		projectsAddedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnsync_reconcile_projects_added_total",
				Help: "Number of projects added to the registry by project type.",
			},
			[]string{"project_type"},
		),
		parseFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dnsync_reconcile_parse_failures_total",
				Help: "Number of candidate manifests skipped because they could not be parsed.",
			},
		),
		passDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dnsync_reconcile_pass_duration_seconds",
				Help:    "Time taken by a reconciliation pass.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	m.Registry.MustRegister(
		m.passTotal,
		m.manifestsDiscovered,
		m.projectsAddedTotal,
		m.parseFailuresTotal,
		m.passDuration,
	)
	return m
}

// ObservePass records the outcome and duration of a pass.
func (m *Metrics) ObservePass(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.passTotal.WithLabelValues(result).Inc()
	m.passDuration.Observe(d.Seconds())
}

// SetDiscovered records the number of manifests the last scan found.
func (m *Metrics) SetDiscovered(n int) {
	if m == nil {
		return
	}
	m.manifestsDiscovered.Set(float64(n))
}

// AddProject counts one added project.
func (m *Metrics) AddProject(projectType string) {
	if m == nil {
		return
	}
	m.projectsAddedTotal.WithLabelValues(projectType).Inc()
}

// AddParseFailures counts skipped candidates.
func (m *Metrics) AddParseFailures(n int) {
	if m == nil || n == 0 {
		return
	}
	m.parseFailuresTotal.Add(float64(n))
}

// WriteTextfile writes all metrics in the text exposition format to path,
// replacing it atomically, for the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
