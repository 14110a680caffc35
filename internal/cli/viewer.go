package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"casetriage/internal/app"
)

func viewerCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewer <viewer-id>",
		Short: "Register or update the jurisdiction a viewer triages",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			label, _ := cmd.Flags().GetString("jurisdiction")
			v, err := a.Service.RegisterViewer(commandContext(cmd), args[0], label)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "viewer %s triages %s\n", v.ID, orDash(v.Jurisdiction))
			return nil
		}),
	}
	cmd.Flags().String("jurisdiction", "", "jurisdiction label; empty means every case")
	return cmd
}
