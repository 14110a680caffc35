package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"casetriage/internal/app"
	"casetriage/internal/triage"
	triagehandler "casetriage/internal/triage/handler"
)

func viewCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the ranked triage view for a viewer or a jurisdiction",
		Long: `Show the ranked triage view.

With --viewer the viewer's registered jurisdiction is the starting scope;
with --scope the given label is. When the exact scope has no cases the view
falls back to the region, then to every case.

Usage:
  triagectl view --viewer desk-san-isidro
  triagectl view --scope "San Isidro" --json`,
		Args: cobra.NoArgs,
		RunE: s.withApp(runView),
	}
	cmd.Flags().String("viewer", "", "viewer id whose jurisdiction scopes the view")
	cmd.Flags().String("scope", "", "jurisdiction label to start the cascade from")
	cmd.MarkFlagsMutuallyExclusive("viewer", "scope")
	return cmd
}

func runView(cmd *cobra.Command, _ []string, a *app.App) error {
	viewer, _ := cmd.Flags().GetString("viewer")
	scope, _ := cmd.Flags().GetString("scope")
	ctx := commandContext(cmd)

	var (
		view *triage.View
		err  error
	)
	switch {
	case viewer != "":
		view, err = a.Service.Triage(ctx, viewer)
	case cmd.Flags().Changed("scope"):
		view, err = a.Service.TriageScope(ctx, scope)
	default:
		return errors.New("one of --viewer or --scope is required")
	}
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), triagehandler.FromView(view))
	}
	return renderView(cmd.OutOrStdout(), view)
}
