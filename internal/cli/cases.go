package cli

import (
	"github.com/spf13/cobra"

	"casetriage/internal/app"
	"casetriage/internal/cases/models"
	triagehandler "casetriage/internal/triage/handler"
	"casetriage/internal/triage/service"
	dErrors "casetriage/pkg/domain-errors"
)

func scoreCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "score <case-id>",
		Short: "Score one case now and show the breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			id, err := models.ParseCaseID(args[0])
			if err != nil {
				return err
			}
			result, err := a.Service.ScoreCase(commandContext(cmd), id)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), triagehandler.FromResult(result))
			}
			renderResult(cmd.OutOrStdout(), result)
			return nil
		}),
	}
}

func statusCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <case-id> <missing|found>",
		Short: "Mark a case found or reopen it as missing",
		Args:  cobra.ExactArgs(2),
		RunE: s.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			id, err := models.ParseCaseID(args[0])
			if err != nil {
				return err
			}
			target, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}
			actor, _ := cmd.Flags().GetString("actor")

			updated, err := a.Service.Transition(commandContext(cmd), id, target, actor)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			renderCase(cmd.OutOrStdout(), updated)
			return nil
		}),
	}
	cmd.Flags().String("actor", "", "operator recorded in the audit trail")
	return cmd
}

func reportCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Register a new missing-person case",
		Long: `Register a new missing-person case reported now.

Usage:
  triagectl report --age 4 --location "Centro bus terminal" --jurisdiction "San Isidro"
  triagectl report --name "J. Doe" --jurisdiction Tigre`,
		Args: cobra.NoArgs,
		RunE: s.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			req := service.ReportRequest{}
			req.SubjectName, _ = cmd.Flags().GetString("name")
			req.LastKnownLocation, _ = cmd.Flags().GetString("location")
			req.Jurisdiction, _ = cmd.Flags().GetString("jurisdiction")
			req.Actor, _ = cmd.Flags().GetString("actor")
			if cmd.Flags().Changed("age") {
				age, _ := cmd.Flags().GetInt("age")
				if age < 0 {
					return dErrors.New(dErrors.CodeValidation, "--age cannot be negative")
				}
				req.SubjectAge = &age
			}

			c, err := a.Service.Report(commandContext(cmd), req)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			renderCase(cmd.OutOrStdout(), c)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "subject name")
	cmd.Flags().Int("age", 0, "subject age in years (omit when unknown)")
	cmd.Flags().String("location", "", "last known location")
	cmd.Flags().String("jurisdiction", "", "jurisdiction label")
	cmd.Flags().String("actor", "", "operator recorded in the audit trail")
	return cmd
}

func historyCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "history <case-id>",
		Short: "List the status changes of a case",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			id, err := models.ParseCaseID(args[0])
			if err != nil {
				return err
			}
			changes, err := a.Service.History(commandContext(cmd), id)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), triagehandler.FromHistory(id, changes))
			}
			return renderHistory(cmd.OutOrStdout(), id, changes)
		}),
	}
}
