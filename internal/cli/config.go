package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/httpsify/internal/config"
)

func newConfigCmd() *cobra.Command {
	opts := &rewriteFlags{}
	cmd := &cobra.Command{
		Use:   "config [root]",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration a run would use, after merging flags, HTTPSIFY_*
environment variables, .env files, httpsify.yaml and defaults.

The output is valid httpsify.yaml and can be saved as a starting point.`,
		Example: `  httpsify config ./public > ./public/httpsify.yaml`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args, opts)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	addRewriteFlags(cmd, opts)
	return cmd
}
