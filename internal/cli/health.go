// internal/cli/health.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())

		if err := app.Client.Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backend %s is healthy\n", app.Config.Backend.BaseURL)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the atsctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}
