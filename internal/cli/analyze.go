// internal/cli/analyze.go
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"atsctl/internal/analysis"
)

var analyzeFlags struct {
	resumeFile string
	jobFile    string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description",
	Long: `Analyze sends the resume and job description to the backend scorer,
prints the result, and records it so later commands (results, optimize)
start from this analysis. Use "-" as a file to read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())

		resumeText, err := readInput(cmd, analyzeFlags.resumeFile)
		if err != nil {
			return fmt.Errorf("reading resume: %w", err)
		}
		jobText, err := readInput(cmd, analyzeFlags.jobFile)
		if err != nil {
			return fmt.Errorf("reading job description: %w", err)
		}

		payload, err := app.Client.Analyze(cmd.Context(), resumeText, jobText)
		if err != nil {
			return err
		}
		record, err := analysis.Normalize(payload)
		if err != nil {
			return err
		}
		record.ResumeText = resumeText
		record.JobDescriptionText = jobText

		if err := app.Propagator.Propagate(cmd.Context(), record); err != nil {
			app.Log.WithError(err).Warn("analysis not fully propagated", nil)
		}

		renderAnalysis(cmd.OutOrStdout(), record)
		return nil
	},
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFlags.resumeFile, "resume", "r", "", "Resume text file (\"-\" for stdin)")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.jobFile, "job", "j", "", "Job description text file (\"-\" for stdin)")
	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("job")
}
