package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/treasury/config"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check configuration files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration (YAML or JSON by extension)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "treasury.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration after env and flag overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			// load already validated; report what it resolved
			c := rc.cfg
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d reference currencies, %d extra, %d overrides, %d rates, journal %s\n",
				len(c.Routing.Reference), len(c.Routing.Extra), len(c.Routing.Overrides), len(c.Rates), c.Journal.Type)
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
