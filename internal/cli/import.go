package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dnsync-labs/dnsync/internal/metrics"
	"github.com/dnsync-labs/dnsync/internal/naming"
	"github.com/dnsync-labs/dnsync/internal/reconcile"
	"github.com/dnsync-labs/dnsync/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	importDryRun      bool
	importJSON        bool
	importMetricsFile string
)

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show the projects that would be registered without writing")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Output the result as JSON")
	importCmd.Flags().StringVar(&importMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file (node exporter textfile format)")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Register new .NET projects in the workspace",
	Long: `Scan the apps and libs directories for .NET project files and register every
project that is not in the workspace registry yet.

Applications get build and serve targets, libraries get build, and test
projects (those referencing Microsoft.NET.Test.Sdk) get build and test.
Manifests that cannot be parsed are reported and skipped. A name used by two
projects aborts the import without changing the registry.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

// importReport is the JSON form of a reconcile.Result.
type importReport struct {
	Added      []projectSummary `json:"added"`
	Skipped    []string         `json:"skipped,omitempty"`
	Failures   []failureSummary `json:"failures,omitempty"`
	Discovered int              `json:"discovered"`
	DryRun     bool             `json:"dryRun"`
}

type projectSummary struct {
	Name        string   `json:"name"`
	Root        string   `json:"root"`
	ProjectType string   `json:"projectType"`
	Targets     []string `json:"targets"`
}

type failureSummary struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func runImport(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	opts := reconcile.OptionsFromConfig(current.cfg)
	opts.DryRun = importDryRun

	if importMetricsFile != "" {
		opts.Metrics = metrics.New()
		defer func() {
			if werr := opts.Metrics.WriteTextfile(importMetricsFile); werr != nil && err == nil {
				err = werr
			}
		}()
	}

	b := current.bootstrapper(cmd)
	b.DryRun = importDryRun
	r := reconcile.New(b, opts)
	res, err := r.Reconcile(ctx, current.workspace(), newClient(cmd, current))
	if err != nil {
		var dup *naming.DuplicateProjectNameError
		if errors.As(err, &dup) {
			fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Import aborted:")+" project name "+CmdStyle.Render(dup.Name)+
				" is used by both "+dup.ExistingRoot+" and "+dup.Root+". The registry was not changed.")
		}
		return err
	}

	report := newImportReport(res)
	if importJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling import result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	printImportReport(cmd.OutOrStdout(), report)
	return nil
}

func newImportReport(res *reconcile.Result) importReport {
	report := importReport{
		Added:      make([]projectSummary, 0, len(res.Added)),
		Skipped:    res.Skipped,
		Discovered: res.Discovered,
		DryRun:     res.DryRun,
	}
	for _, e := range res.Added {
		report.Added = append(report.Added, summarize(e))
	}
	for _, f := range res.Failures {
		report.Failures = append(report.Failures, failureSummary{Path: f.Path, Error: f.Err.Error()})
	}
	return report
}

func summarize(e *workspace.Entry) projectSummary {
	targets := make([]string, 0, len(e.Targets))
	for name := range e.Targets {
		targets = append(targets, name)
	}
	sort.Strings(targets)
	return projectSummary{Name: e.Name, Root: e.Root, ProjectType: string(e.ProjectType), Targets: targets}
}

func printImportReport(w io.Writer, report importReport) {
	for _, f := range report.Failures {
		fmt.Fprintf(w, "%s %s: %s\n", WarningStyle.Render("skipped"), f.Path, f.Error)
	}

	if len(report.Added) == 0 {
		fmt.Fprintf(w, "No new projects found (%d manifest(s) scanned).\n", report.Discovered)
		return
	}

	for _, p := range report.Added {
		fmt.Fprintf(w, "  %s %s %s %s\n",
			SuccessStyle.Render("+"),
			CmdStyle.Render(p.Name),
			SubtitleStyle.Render("("+p.ProjectType+", "+p.Root+")"),
			strings.Join(p.Targets, ", "))
	}
	if report.DryRun {
		fmt.Fprintf(w, "Would add %d project(s). Dry run, registry not written.\n", len(report.Added))
		return
	}
	fmt.Fprintf(w, "Added %d project(s).\n", len(report.Added))
}
