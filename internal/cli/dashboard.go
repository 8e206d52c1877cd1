// internal/cli/dashboard.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show an overview of resumes and analysis history",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		data, err := app.Dashboard.Load(cmd.Context())
		if err != nil {
			return err
		}

		if data.ResumesErr != nil {
			fmt.Fprintln(out, "Resumes: unavailable")
		} else {
			fmt.Fprintf(out, "Resumes: %d\n", len(data.Resumes))
			for _, resume := range data.Resumes {
				fmt.Fprintf(out, "  %4d  %s\n", resume.ID, resume.Filename)
			}
		}

		if data.AnalysesErr != nil {
			fmt.Fprintln(out, "Analyses: unavailable")
			return nil
		}
		fmt.Fprintf(out, "Analyses: %d\n", data.TotalAnalyses)
		if data.TotalAnalyses > 0 {
			fmt.Fprintf(out, "  average score: %.1f\n", data.AverageScore)
			fmt.Fprintf(out, "  best score:    %.1f\n", data.BestScore)
			fmt.Fprintf(out, "  high band:     %d\n", data.HighBandCount)
		}
		return nil
	},
}
