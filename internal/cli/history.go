// internal/cli/history.go
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"atsctl/internal/analysis"
	"atsctl/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, filter, delete, and export past analyses",
}

var historyListFlags struct {
	query string
	year  string
	band  string
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		entries, err := app.History.List(cmd.Context())
		if err != nil {
			return err
		}

		criteria := history.Criteria{
			Query: historyListFlags.query,
			Year:  historyListFlags.year,
		}
		if historyListFlags.band != "" {
			band, err := parseBand(historyListFlags.band)
			if err != nil {
				return err
			}
			criteria.Band = band
		}
		filtered := history.Filter(entries, criteria)

		if len(filtered) == 0 {
			fmt.Fprintln(out, "No analyses match.")
			return nil
		}
		for _, entry := range filtered {
			id := int64(0)
			if entry.ID != nil {
				id = *entry.ID
			}
			fmt.Fprintf(out, "%4d  %-10s  %5.1f (%s)  %-24s %s\n",
				id, dateOnly(entry.CreatedAt), entry.ATSScore, bandLabel(entry.ATSScore),
				truncate(entry.JobTitle, 24), entry.ResumeFilename)
		}
		return nil
	},
}

var historyDeleteFlags struct {
	yes bool
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one analysis (backend first, then the local view)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid analysis id %q", args[0])
		}

		if !historyDeleteFlags.yes {
			answer, err := promptLine(cmd, fmt.Sprintf("Delete analysis %d? [y/N] ", id))
			if err != nil {
				return err
			}
			if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		entries, err := app.History.List(cmd.Context())
		if err != nil {
			return err
		}
		remaining, err := app.History.Remove(cmd.Context(), entries, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted analysis %d. %d remaining.\n", id, len(remaining))
		return nil
	},
}

var historyExportFlags struct {
	outputFile string
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the analysis history as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())

		entries, err := app.History.List(cmd.Context())
		if err != nil {
			return err
		}
		data, err := history.Export(entries)
		if err != nil {
			return err
		}

		if historyExportFlags.outputFile != "" {
			if err := os.WriteFile(historyExportFlags.outputFile, data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d analyses to %s\n", len(entries), historyExportFlags.outputFile)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one past analysis and stage it as the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appFromContext(cmd.Context())

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid analysis id %q", args[0])
		}

		row, err := app.Client.GetAnalysis(cmd.Context(), id)
		if err != nil {
			return err
		}
		entry, err := analysis.NormalizeHistoryEntry(row)
		if err != nil {
			return err
		}

		if err := app.History.Select(cmd.Context(), entry); err != nil {
			app.Log.WithError(err).Warn("analysis not staged for next load", nil)
		}
		renderAnalysis(cmd.OutOrStdout(), &entry.AnalysisRecord)
		return nil
	},
}

func parseBand(s string) (analysis.Band, error) {
	switch strings.ToLower(s) {
	case "high":
		return analysis.BandHigh, nil
	case "medium":
		return analysis.BandMedium, nil
	case "low":
		return analysis.BandLow, nil
	}
	return "", fmt.Errorf("invalid band %q (want high, medium, or low)", s)
}

func dateOnly(timestamp string) string {
	if len(timestamp) >= 10 {
		return timestamp[:10]
	}
	return timestamp
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func init() {
	historyListCmd.Flags().StringVarP(&historyListFlags.query, "query", "q", "", "Substring filter over job title and resume filename")
	historyListCmd.Flags().StringVar(&historyListFlags.year, "year", "", "Filter by year, e.g. 2026")
	historyListCmd.Flags().StringVar(&historyListFlags.band, "band", "", "Filter by score band: high, medium, or low")

	historyDeleteCmd.Flags().BoolVarP(&historyDeleteFlags.yes, "yes", "y", false, "Skip the confirmation prompt")

	historyExportCmd.Flags().StringVarP(&historyExportFlags.outputFile, "output", "o", "", "Write the export to a file (default: stdout)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyViewCmd)
}
