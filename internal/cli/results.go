// internal/cli/results.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"atsctl/internal/reconcile"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the current analysis, recovered from the storage tiers",
	Long: `Results probes the storage tiers in order: a freshly produced
analysis first, then one selected from history, then the session-durable
copy. Handoff values are consumed on read, so running results twice
falls back to the session copy the second time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		result := app.Loader.Load(cmd.Context())
		switch result.State {
		case reconcile.StatePopulated:
			renderAnalysis(out, result.Record)
		case reconcile.StatePartiallyPopulated:
			fmt.Fprintln(out, "No scored analysis available, but previous inputs were recovered:")
			if result.ResumeText != "" {
				fmt.Fprintf(out, "  resume: %d characters\n", len(result.ResumeText))
			}
			if result.JobDescriptionText != "" {
				fmt.Fprintf(out, "  job description: %d characters\n", len(result.JobDescriptionText))
			}
			if len(result.MissingKeywords) > 0 {
				fmt.Fprintf(out, "  missing keywords: %s\n", summarizeKeywords(result.MissingKeywords))
			}
			fmt.Fprintln(out, "Run `atsctl analyze` to produce a new score.")
		default:
			fmt.Fprintln(out, "No analysis available. Run `atsctl analyze` first.")
		}
		return nil
	},
}
