package analysis

import (
	"encoding/json"
	"errors"
	"time"

	"atsctl/internal/common/metrics"
)

// ErrNoScore reports that no usable score could be extracted from a
// payload. Callers treat the whole payload as unusable rather than
// fabricating a zero score.
var ErrNoScore = errors.New("NO_SCORE")

// Accessor precedence for each canonical field. Earlier entries win;
// later entries are legacy or backend-variant spellings.
var (
	scoreKeys = []string{"ats_score", "score"}

	gapListKeys   = []string{"gaps", "missing_keywords", "missingKeywords"}
	matchListKeys = []string{"matches", "strong_matches"}
	recListKeys   = []string{"recommendations", "suggestions"}

	gapItemKeys   = []string{"skill", "term"}
	matchItemKeys = []string{"requirement", "matched_bullet", "matched_text"}
	recItemKeys   = []string{"text", "suggestion", "skill"}

	matchedTextKeys = []string{"matched_text", "matched_bullet"}

	subscoreLegacyKeys = []string{
		"keyword_coverage",
		"skill_overlap",
		"semantic_alignment",
		"formatting_score",
	}
)

// NormalizeJSON decodes raw JSON and normalizes it into the canonical
// record. A payload that is not a JSON object is unusable.
func NormalizeJSON(data []byte) (*AnalysisRecord, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return Normalize(payload)
}

// Normalize maps a raw backend or stored payload into an
// AnalysisRecord. It tolerates the known field-name variants and the
// string-or-array encoding of list fields; unparseable list fields
// degrade to empty slices instead of failing the whole record.
// Normalizing an already-canonical record is a no-op, so records can be
// re-normalized on every tier read without drift.
func Normalize(payload map[string]any) (*AnalysisRecord, error) {
	score, ok := extractScore(payload)
	if !ok {
		return nil, ErrNoScore
	}

	rec := &AnalysisRecord{
		ATSScore:           score,
		Subscores:          extractSubscores(payload),
		Gaps:               extractGaps(payload),
		Matches:            extractMatches(payload),
		Recommendations:    extractRecommendations(payload),
		ResumeText:         extractResumeText(payload),
		JobDescriptionText: extractJobDescriptionText(payload),
	}

	if id, ok := asInt64(payload["id"]); ok {
		rec.ID = &id
	}

	if ts, ok := firstString(payload, "timestamp", "created_at"); ok {
		rec.Timestamp = ts
	} else {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	return rec, nil
}

func extractScore(payload map[string]any) (float64, bool) {
	for _, key := range scoreKeys {
		if v, ok := asFloat(payload[key]); ok {
			return v, true
		}
	}
	return 0, false
}

func extractSubscores(payload map[string]any) map[string]float64 {
	if m, ok := payload["subscores"].(map[string]any); ok {
		out := make(map[string]float64, len(m))
		for k, v := range m {
			if f, ok := asFloat(v); ok {
				out[k] = f
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	// Legacy rows carry flat per-dimension columns instead.
	out := make(map[string]float64, len(subscoreLegacyKeys))
	for _, key := range subscoreLegacyKeys {
		if f, ok := asFloat(payload[key]); ok {
			out[key] = f
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func extractGaps(payload map[string]any) []Gap {
	items := extractList(payload, gapListKeys, "gaps")
	out := make([]Gap, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				out = append(out, Gap{Skill: v})
			}
		case map[string]any:
			skill, ok := firstString(v, gapItemKeys...)
			if !ok {
				metrics.NormalizeFallbacks.WithLabelValues("gaps").Inc()
				continue
			}
			g := Gap{Skill: skill}
			if impact, ok := firstString(v, "impact"); ok {
				g.Impact = impact
			}
			out = append(out, g)
		default:
			metrics.NormalizeFallbacks.WithLabelValues("gaps").Inc()
		}
	}
	return out
}

func extractMatches(payload map[string]any) []Match {
	items := extractList(payload, matchListKeys, "matches")
	out := make([]Match, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				out = append(out, Match{Requirement: v})
			}
		case map[string]any:
			req, ok := firstString(v, matchItemKeys...)
			if !ok {
				metrics.NormalizeFallbacks.WithLabelValues("matches").Inc()
				continue
			}
			m := Match{Requirement: req}
			if text, ok := firstString(v, matchedTextKeys...); ok && text != req {
				m.MatchedText = text
			}
			out = append(out, m)
		default:
			metrics.NormalizeFallbacks.WithLabelValues("matches").Inc()
		}
	}
	return out
}

func extractRecommendations(payload map[string]any) []Recommendation {
	items := extractList(payload, recListKeys, "recommendations")
	out := make([]Recommendation, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				out = append(out, Recommendation{Text: v})
			}
		case map[string]any:
			text, ok := firstString(v, recItemKeys...)
			if !ok {
				metrics.NormalizeFallbacks.WithLabelValues("recommendations").Inc()
				continue
			}
			out = append(out, Recommendation{Text: text})
		default:
			metrics.NormalizeFallbacks.WithLabelValues("recommendations").Inc()
		}
	}
	return out
}

// extractList resolves a list field that may arrive as a native JSON
// array or as a JSON-encoded string (double-serialized rows). Anything
// else degrades to an empty list.
func extractList(payload map[string]any, keys []string, field string) []any {
	for _, key := range keys {
		raw, ok := payload[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case []any:
			return v
		case string:
			if v == "" {
				return nil
			}
			var items []any
			if err := json.Unmarshal([]byte(v), &items); err != nil {
				metrics.NormalizeFallbacks.WithLabelValues(field).Inc()
				return nil
			}
			return items
		default:
			metrics.NormalizeFallbacks.WithLabelValues(field).Inc()
			return nil
		}
	}
	return nil
}

func extractResumeText(payload map[string]any) string {
	if s, ok := firstString(payload, "resume_text"); ok {
		return s
	}
	if resume, ok := payload["resume"].(map[string]any); ok {
		if s, ok := firstString(resume, "file_content", "content"); ok {
			return s
		}
	}
	if s, ok := firstString(payload, "content"); ok {
		return s
	}
	return ""
}

func extractJobDescriptionText(payload map[string]any) string {
	if s, ok := firstString(payload, "jd_text"); ok {
		return s
	}
	switch jd := payload["job_description"].(type) {
	case string:
		return jd
	case map[string]any:
		if s, ok := firstString(jd, "description"); ok {
			return s
		}
	}
	if s, ok := firstString(payload, "description"); ok {
		return s
	}
	return ""
}

// NormalizeHistoryEntry maps a persisted analysis row, which nests its
// resume and job description, into a HistoryEntry.
func NormalizeHistoryEntry(payload map[string]any) (*HistoryEntry, error) {
	rec, err := Normalize(payload)
	if err != nil {
		return nil, err
	}
	entry := &HistoryEntry{AnalysisRecord: *rec}
	if s, ok := firstString(payload, "created_at", "timestamp"); ok {
		entry.CreatedAt = s
	}
	if resume, ok := payload["resume"].(map[string]any); ok {
		if s, ok := firstString(resume, "filename", "file_name"); ok {
			entry.ResumeFilename = s
		}
	}
	if jd, ok := payload["job_description"].(map[string]any); ok {
		if s, ok := firstString(jd, "title"); ok {
			entry.JobTitle = s
		}
	}
	return entry, nil
}

func firstString(m map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
