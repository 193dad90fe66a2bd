package cli

import (
	"github.com/spf13/cobra"
)

func newBuildCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Analyze declarations, write the manifest and generate code",
		Example: `  sabergen build --source decl/ --out ./di
  SABERGEN_OUTPUT_PACKAGE=wiring sabergen build --config sabergen.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.analyze(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.writeManifest(cmd.OutOrStdout(), m); err != nil {
				return err
			}
			return a.generate(cmd.OutOrStdout(), m)
		},
	}
	addAnalyzeFlags(cmd)
	addGenerateFlags(cmd)
	return cmd
}
