package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Pass(t *testing.T) {
	m := New()
	m.SetDiscovered(3)
	m.AddProject("application")
	m.AddProject("application")
	m.AddProject("library")
	m.AddParseFailures(1)
	m.AddParseFailures(0)
	m.ObservePass(ResultAdded, 250*time.Millisecond)

	if got := testutil.ToFloat64(m.passTotal.WithLabelValues(ResultAdded)); got != 1 {
		t.Errorf("pass_total{added} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.projectsAddedTotal.WithLabelValues("application")); got != 2 {
		t.Errorf("projects_added_total{application} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.manifestsDiscovered); got != 3 {
		t.Errorf("manifests_discovered = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.parseFailuresTotal); got != 1 {
		t.Errorf("parse_failures_total = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.passDuration); got != 1 {
		t.Errorf("pass_duration series = %d, want 1", got)
	}
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	m.ObservePass(ResultNoop, time.Second)
	m.SetDiscovered(1)
	m.AddProject("library")
	m.AddParseFailures(2)
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile on nil Metrics: %v", err)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ObservePass(ResultNoop, time.Millisecond)

	path := filepath.Join(t.TempDir(), "dnsync.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `dnsync_reconcile_pass_total{result="noop"} 1`) {
		t.Errorf("textfile missing pass counter:\n%s", data)
	}
}
