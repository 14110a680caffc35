package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"casetriage/internal/jurisdiction"
	"casetriage/internal/triage"
)

type effectiveConfig struct {
	Policy       triage.Policy       `json:"policy" yaml:"policy"`
	Jurisdiction jurisdiction.Config `json:"jurisdiction" yaml:"jurisdiction"`
}

func policyCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the effective triage policy and jurisdiction cascade",
		Long: `Print the scoring policy and jurisdiction cascade after the policy file and
CASETRIAGE_POLICY_* / CASETRIAGE_JURISDICTION_* overrides are applied.
The YAML output is a valid --policy-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := s.engine()
			if err != nil {
				return err
			}
			out := effectiveConfig{Policy: engine.Policy, Jurisdiction: engine.Jurisdiction}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
