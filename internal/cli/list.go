package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dnsync-labs/dnsync/internal/branding"
	"github.com/dnsync-labs/dnsync/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	listTypeFilter string
	listJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	Long:  `List the projects in the workspace registry with their type, root and targets.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listTypeFilter, "type", "", "Filter by project type (application, library)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listTypeFilter != "" &&
		listTypeFilter != string(workspace.ProjectTypeApplication) &&
		listTypeFilter != string(workspace.ProjectTypeLibrary) {
		return fmt.Errorf("--type must be %q or %q, got %q",
			workspace.ProjectTypeApplication, workspace.ProjectTypeLibrary, listTypeFilter)
	}

	entries, err := current.workspace().Registry.Entries(cmd.Context())
	if err != nil {
		return err
	}

	projects := make([]projectSummary, 0, len(entries))
	for _, e := range entries {
		if listTypeFilter != "" && string(e.ProjectType) != listTypeFilter {
			continue
		}
		projects = append(projects, summarize(e))
	}

	if listJSON {
		return printListJSON(cmd, projects)
	}
	if len(projects) == 0 {
		if listTypeFilter != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No registered projects matching --type=%s\n", listTypeFilter)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "No projects registered yet. Run '%s import'.\n", branding.CLIName())
		}
		return nil
	}
	return printListTable(cmd, projects)
}

func printListTable(cmd *cobra.Command, projects []projectSummary) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tROOT\tTARGETS")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.ProjectType, p.Root, strings.Join(p.Targets, ","))
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, projects []projectSummary) error {
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
