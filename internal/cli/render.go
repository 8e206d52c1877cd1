// internal/cli/render.go
package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"atsctl/internal/analysis"
)

// maxListedKeywords bounds the inline keyword display; the rest is
// summarized as "+N more".
const maxListedKeywords = 6

func bandLabel(score float64) string {
	switch analysis.BandOf(score) {
	case analysis.BandHigh:
		return "high"
	case analysis.BandMedium:
		return "medium"
	default:
		return "low"
	}
}

func renderAnalysis(w io.Writer, record *analysis.AnalysisRecord) {
	fmt.Fprintf(w, "ATS score: %.1f (%s)\n", record.ATSScore, bandLabel(record.ATSScore))

	if len(record.Subscores) > 0 {
		names := make([]string, 0, len(record.Subscores))
		for name := range record.Subscores {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-20s %.1f\n", name, record.Subscores[name])
		}
	}

	if keywords := record.MissingKeywords(); len(keywords) > 0 {
		fmt.Fprintf(w, "\nMissing keywords: %s\n", summarizeKeywords(keywords))
	}

	if len(record.Matches) > 0 {
		fmt.Fprintln(w, "\nStrong matches:")
		for _, m := range record.Matches {
			if m.MatchedText != "" {
				fmt.Fprintf(w, "  ✓ %s — %s\n", m.Requirement, m.MatchedText)
			} else {
				fmt.Fprintf(w, "  ✓ %s\n", m.Requirement)
			}
		}
	}

	if len(record.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, r := range record.Recommendations {
			fmt.Fprintf(w, "  • %s\n", r.Text)
		}
	}
}

func summarizeKeywords(keywords []string) string {
	if len(keywords) <= maxListedKeywords {
		return strings.Join(keywords, ", ")
	}
	shown := strings.Join(keywords[:maxListedKeywords], ", ")
	return fmt.Sprintf("%s (+%d more)", shown, len(keywords)-maxListedKeywords)
}
