// internal/cli/optimize.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"atsctl/internal/common/errors"
	"atsctl/internal/optimize"
	"atsctl/internal/reconcile"
)

var optimizeFlags struct {
	outputFile string
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Rewrite the analyzed resume around its missing keywords",
	Long: `Optimize starts from the most recent analysis, asks the backend to
rewrite the resume around the missing keywords, and re-scores the
result. When the backend rewrite is unavailable a rule-based fallback
folds the keywords into the skills section instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		loaded := app.Loader.Load(cmd.Context())
		if loaded.State == reconcile.StateAbsent || loaded.ResumeText == "" {
			return errors.NewNoAnalysisError()
		}

		input := optimize.Input{
			ResumeText:         loaded.ResumeText,
			JobDescriptionText: loaded.JobDescriptionText,
			MissingKeywords:    loaded.MissingKeywords,
		}
		if loaded.Record != nil {
			input.BeforeScore = loaded.Record.ATSScore
		}

		result, err := app.Optimize.Run(cmd.Context(), input)
		if result == nil {
			return err
		}

		if result.UsedFallback {
			fmt.Fprintln(out, "Backend optimization unavailable, applied rule-based improvements.")
		}
		fmt.Fprintf(out, "Score before: %.1f\n", result.BeforeScore)
		if result.AfterScore != nil {
			fmt.Fprintf(out, "Score after:  %.1f\n", *result.AfterScore)
		} else {
			fmt.Fprintln(out, "Score after:  not available (re-scoring failed)")
		}
		if len(result.KeywordsUsed) > 0 {
			fmt.Fprintf(out, "Keywords added: %s\n", summarizeKeywords(result.KeywordsUsed))
		}

		if optimizeFlags.outputFile != "" {
			if writeErr := os.WriteFile(optimizeFlags.outputFile, []byte(result.OptimizedResumeText), 0o644); writeErr != nil {
				return fmt.Errorf("writing optimized resume: %w", writeErr)
			}
			fmt.Fprintf(out, "Optimized resume written to %s\n", optimizeFlags.outputFile)
		} else {
			fmt.Fprintf(out, "\n%s\n", result.OptimizedResumeText)
		}

		// A failed re-score still leaves usable text; report it last.
		return err
	},
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeFlags.outputFile, "output", "o", "", "Write the optimized resume to a file (default: stdout)")
}
