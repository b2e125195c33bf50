package cli

import (
	"fmt"

	"github.com/dnsync-labs/dnsync/internal/reconcile"
	"github.com/dnsync-labs/dnsync/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	newTemplate  string
	newDirectory string
	newProject   string
)

func init() {
	newCmd.Flags().StringVar(&newTemplate, "template", "", "dotnet template to use (default: webapi, classlib or xunit by kind)")
	newCmd.Flags().StringVar(&newDirectory, "directory", "", "Project directory relative to the workspace root")
	newCmd.Flags().StringVar(&newProject, "project", "", "Registered project the new one references (e.g. the project under test)")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new <app|lib|test> <Name>",
	Short: "Create a .NET project and register it",
	Long: `Create a .NET project with dotnet new and register it in the workspace.

Apps and test projects are created under the apps directory, libraries under
the libs directory, in a folder named after the project (MyTestApi becomes
my-test-api).

Examples:
  dnsync new app MyTestApi
  dnsync new lib Contoso.Core
  dnsync new test MyTestApi.Test --project my-test-api`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(scaffold.KindApp), string(scaffold.KindLib), string(scaffold.KindTest)},
	RunE: func(cmd *cobra.Command, args []string) error {
		req := scaffold.Request{
			Kind:      scaffold.Kind(args[0]),
			Name:      args[1],
			Template:  newTemplate,
			Directory: newDirectory,
			Reference: newProject,
		}

		s := &scaffold.Scaffolder{
			Reconciler: reconcile.New(current.bootstrapper(cmd), reconcile.OptionsFromConfig(current.cfg)),
			AppsDir:    current.cfg.Layout.AppsDir,
			LibsDir:    current.cfg.Layout.LibsDir,
		}
		result, err := s.Generate(cmd.Context(), current.workspace(), newClient(cmd, current), req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", SuccessStyle.Render("Created"), CmdStyle.Render(result.Manifest))
		if result.Reconcile != nil {
			for _, e := range result.Reconcile.Added {
				fmt.Fprintf(out, "%s %s (%s)\n", SuccessStyle.Render("Registered"), CmdStyle.Render(e.Name), e.Root)
			}
			for _, f := range result.Reconcile.Failures {
				fmt.Fprintf(out, "%s %s: %v\n", WarningStyle.Render("skipped"), f.Path, f.Err)
			}
		}
		return nil
	},
}
