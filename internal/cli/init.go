package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare the workspace for .NET projects",
	Long: `Check the installed .NET SDK and create the files a .NET workspace needs:
the dotnet local tool manifest (.config/dotnet-tools.json), Directory.Build.props
and the dnsync config file. Existing files are left untouched.

The import and new commands run the same step automatically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := current.bootstrapper(cmd)
		b.Out = cmd.OutOrStdout()

		fmt.Fprintf(cmd.OutOrStdout(), "Initializing workspace at %s\n", current.root)
		if err := b.Bootstrap(cmd.Context(), current.workspace(), nil, newClient(cmd, current)); err != nil {
			return fmt.Errorf("initializing workspace: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Workspace ready."))
		return nil
	},
}
