package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Score extraction
// ==========================

func TestNormalize_ScorePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    float64
		wantErr error
	}{
		{
			name:    "ats_score wins over score",
			payload: map[string]any{"ats_score": 91.5, "score": 12.0},
			want:    91.5,
		},
		{
			name:    "score used when ats_score absent",
			payload: map[string]any{"score": 73.0},
			want:    73.0,
		},
		{
			name:    "zero score is a real score",
			payload: map[string]any{"ats_score": 0.0},
			want:    0.0,
		},
		{
			name:    "no score field",
			payload: map[string]any{"gaps": []any{"Go"}},
			wantErr: ErrNoScore,
		},
		{
			name:    "non-numeric score is no score",
			payload: map[string]any{"ats_score": "high"},
			wantErr: ErrNoScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Normalize(tt.payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ATSScore)
		})
	}
}

// ==========================
// List fields
// ==========================

func TestNormalize_StringAndArrayListsAreEquivalent(t *testing.T) {
	asArray := map[string]any{
		"ats_score": 70.0,
		"gaps":      []any{map[string]any{"skill": "Kubernetes"}, "Terraform"},
		"matches": []any{
			map[string]any{"requirement": "Go", "matched_bullet": "built Go services"},
		},
		"recommendations": []any{map[string]any{"text": "Add metrics experience"}},
	}
	asString := map[string]any{
		"ats_score":       70.0,
		"gaps":            `[{"skill":"Kubernetes"},"Terraform"]`,
		"matches":         `[{"requirement":"Go","matched_bullet":"built Go services"}]`,
		"recommendations": `[{"text":"Add metrics experience"}]`,
	}

	fromArray, err := Normalize(asArray)
	require.NoError(t, err)
	fromString, err := Normalize(asString)
	require.NoError(t, err)

	fromArray.Timestamp = ""
	fromString.Timestamp = ""
	assert.Equal(t, fromArray, fromString)
	assert.Equal(t, []Gap{{Skill: "Kubernetes"}, {Skill: "Terraform"}}, fromArray.Gaps)
	assert.Equal(t, "built Go services", fromArray.Matches[0].MatchedText)
}

func TestNormalize_ElementFieldPrecedence(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"ats_score": 50.0,
		"gaps": []any{
			map[string]any{"skill": "Docker", "term": "container runtime"},
			map[string]any{"term": "CI/CD"},
		},
		"matches": []any{
			map[string]any{"matched_bullet": "led migrations"},
		},
		"recommendations": []any{
			map[string]any{"suggestion": "Quantify impact"},
			map[string]any{"skill": "GraphQL"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []Gap{{Skill: "Docker"}, {Skill: "CI/CD"}}, rec.Gaps)
	assert.Equal(t, []Match{{Requirement: "led migrations"}}, rec.Matches)
	assert.Equal(t, []Recommendation{{Text: "Quantify impact"}, {Text: "GraphQL"}}, rec.Recommendations)
}

func TestNormalize_MalformedListsDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{
			name:    "unparseable string list",
			payload: map[string]any{"ats_score": 60.0, "gaps": "not json at all"},
		},
		{
			name:    "wrong-typed list",
			payload: map[string]any{"ats_score": 60.0, "gaps": 42.0},
		},
		{
			name: "elements of unusable shape",
			payload: map[string]any{
				"ats_score": 60.0,
				"gaps":      []any{12.0, map[string]any{"weight": 3.0}},
			},
		},
		{
			name:    "nil list",
			payload: map[string]any{"ats_score": 60.0, "gaps": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Normalize(tt.payload)
			require.NoError(t, err)
			assert.Empty(t, rec.Gaps)
			assert.Empty(t, rec.Matches)
			assert.Empty(t, rec.Recommendations)
		})
	}
}

// ==========================
// Idempotence
// ==========================

func TestNormalize_Idempotent(t *testing.T) {
	raw := map[string]any{
		"score":            82.0,
		"missing_keywords": `["Kubernetes","AWS","Kubernetes"]`,
		"strong_matches":   []any{map[string]any{"requirement": "Go"}},
		"suggestions":      []any{"Add a summary section"},
		"keyword_coverage": 0.7,
		"skill_overlap":    0.5,
		"resume":           map[string]any{"file_content": "resume body"},
		"job_description":  map[string]any{"description": "jd body"},
		"created_at":       "2026-08-01T10:00:00Z",
	}

	first, err := Normalize(raw)
	require.NoError(t, err)

	data, err := json.Marshal(first)
	require.NoError(t, err)
	second, err := NormalizeJSON(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 82.0, second.ATSScore)
	assert.Equal(t, "resume body", second.ResumeText)
	assert.Equal(t, "jd body", second.JobDescriptionText)
	assert.Equal(t, map[string]float64{"keyword_coverage": 0.7, "skill_overlap": 0.5}, second.Subscores)
}

// ==========================
// Text and metadata fields
// ==========================

func TestNormalize_TextFieldPrecedence(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"ats_score":       75.0,
		"resume_text":     "direct resume",
		"resume":          map[string]any{"file_content": "nested resume"},
		"jd_text":         "direct jd",
		"job_description": map[string]any{"description": "nested jd"},
	})
	require.NoError(t, err)
	assert.Equal(t, "direct resume", rec.ResumeText)
	assert.Equal(t, "direct jd", rec.JobDescriptionText)
}

func TestNormalize_JobDescriptionAsPlainString(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"ats_score":       75.0,
		"job_description": "plain jd text",
	})
	require.NoError(t, err)
	assert.Equal(t, "plain jd text", rec.JobDescriptionText)
}

func TestNormalize_IDAndTimestamp(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"id":         17.0,
		"ats_score":  64.0,
		"created_at": "2026-07-04T00:00:00Z",
	})
	require.NoError(t, err)
	require.NotNil(t, rec.ID)
	assert.Equal(t, int64(17), *rec.ID)
	assert.Equal(t, "2026-07-04T00:00:00Z", rec.Timestamp)

	rec, err = Normalize(map[string]any{"ats_score": 64.0})
	require.NoError(t, err)
	assert.Nil(t, rec.ID)
	assert.NotEmpty(t, rec.Timestamp)
}

func TestNormalizeHistoryEntry(t *testing.T) {
	entry, err := NormalizeHistoryEntry(map[string]any{
		"id":        3.0,
		"ats_score": 88.0,
		"resume": map[string]any{
			"filename":     "cv.pdf",
			"file_content": "resume text",
		},
		"job_description": map[string]any{
			"title":       "Backend Engineer",
			"description": "jd text",
		},
		"created_at": "2026-06-01T12:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", entry.ResumeFilename)
	assert.Equal(t, "Backend Engineer", entry.JobTitle)
	assert.Equal(t, "2026-06-01T12:00:00Z", entry.CreatedAt)
	assert.Equal(t, "resume text", entry.ResumeText)
	assert.Equal(t, "jd text", entry.JobDescriptionText)
}

// ==========================
// Derived views
// ==========================

func TestMissingKeywords_DeduplicatesByFirstOccurrence(t *testing.T) {
	rec := &AnalysisRecord{Gaps: []Gap{
		{Skill: "Kubernetes"},
		{Skill: "AWS"},
		{Skill: "Kubernetes"},
		{Skill: ""},
		{Skill: "Terraform"},
	}}
	assert.Equal(t, []string{"Kubernetes", "AWS", "Terraform"}, rec.MissingKeywords())
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{100, BandHigh},
		{80, BandHigh},
		{79.9, BandMedium},
		{60, BandMedium},
		{59.9, BandLow},
		{0, BandLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandOf(tt.score), "score %v", tt.score)
	}
}
