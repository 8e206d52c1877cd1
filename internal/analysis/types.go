// Package analysis defines the canonical in-memory shape of a
// resume-vs-job analysis and the normalization of the heterogeneous
// payloads that produce it.
package analysis

// Gap is a requirement present in the job description but missing (or
// weakly present) in the resume.
type Gap struct {
	Skill  string `json:"skill"`
	Impact string `json:"impact,omitempty"`
}

// Match is a requirement found satisfied by some resume content.
type Match struct {
	Requirement string `json:"requirement"`
	MatchedText string `json:"matched_text,omitempty"`
}

// Recommendation is a single optimization suggestion.
type Recommendation struct {
	Text string `json:"text"`
}

// AnalysisRecord is the canonical record all pages consume, independent
// of which storage tier or backend endpoint produced the raw data.
type AnalysisRecord struct {
	ID                 *int64             `json:"id,omitempty"`
	ATSScore           float64            `json:"ats_score"`
	Subscores          map[string]float64 `json:"subscores,omitempty"`
	Gaps               []Gap              `json:"gaps"`
	Matches            []Match            `json:"matches"`
	Recommendations    []Recommendation   `json:"recommendations"`
	ResumeText         string             `json:"resume_text,omitempty"`
	JobDescriptionText string             `json:"job_description,omitempty"`
	Timestamp          string             `json:"timestamp"`
}

// MissingKeywords returns the gap skills deduplicated by first
// occurrence, preserving insertion order. Display truncation ("+N
// more") relies on this ordering.
func (r *AnalysisRecord) MissingKeywords() []string {
	seen := make(map[string]struct{}, len(r.Gaps))
	out := make([]string, 0, len(r.Gaps))
	for _, g := range r.Gaps {
		if g.Skill == "" {
			continue
		}
		if _, ok := seen[g.Skill]; ok {
			continue
		}
		seen[g.Skill] = struct{}{}
		out = append(out, g.Skill)
	}
	return out
}

// OptimizationResult is derived from an AnalysisRecord by the
// optimize-then-rescore flow. AfterScore stays nil until a re-score
// call succeeds; nil means "not yet re-scored", never "re-scored to 0".
type OptimizationResult struct {
	BeforeScore         float64  `json:"before_score"`
	AfterScore          *float64 `json:"after_score,omitempty"`
	BeforeKeywords      []string `json:"before_keywords"`
	AfterKeywords       []string `json:"after_keywords"`
	OptimizedResumeText string   `json:"optimized_text"`
	KeywordsUsed        []string `json:"keywords_used,omitempty"`
	UsedFallback        bool     `json:"used_fallback,omitempty"`
}

// HistoryEntry is a server-persisted AnalysisRecord plus display
// metadata from its linked resume and job description.
type HistoryEntry struct {
	AnalysisRecord
	CreatedAt      string `json:"created_at"`
	ResumeFilename string `json:"resume_filename,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
}

// Band classifies a score for filtering and display.
type Band string

const (
	BandHigh   Band = "high"   // [80, 100]
	BandMedium Band = "medium" // [60, 80)
	BandLow    Band = "low"    // [0, 60)
)

// BandOf maps a score to its band. Boundaries are closed-open: exactly
// 80 is high, exactly 60 is medium.
func BandOf(score float64) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	default:
		return BandLow
	}
}
