// internal/api/scoring.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "atsctl/internal/common/errors"
)

// analyzeResponseSchema is the contract an analyze payload has to meet
// before it enters normalization. It pins types without freezing the
// field-name variants the normalizer tolerates.
const analyzeResponseSchema = `{
	"type": "object",
	"anyOf": [
		{"required": ["ats_score"]},
		{"required": ["score"]}
	],
	"properties": {
		"ats_score": {"type": "number"},
		"score": {"type": "number"},
		"gaps": {"type": ["array", "string", "null"]},
		"missing_keywords": {"type": ["array", "string", "null"]},
		"matches": {"type": ["array", "string", "null"]},
		"strong_matches": {"type": ["array", "string", "null"]},
		"recommendations": {"type": ["array", "string", "null"]},
		"suggestions": {"type": ["array", "string", "null"]},
		"subscores": {"type": ["object", "null"]}
	}
}`

// OptimizeResponse is the backend's rewrite of a resume.
type OptimizeResponse struct {
	Success       bool     `json:"success"`
	OptimizedText string   `json:"optimized_text"`
	KeywordsUsed  []string `json:"keywords_used,omitempty"`
}

// Analyze scores a resume against a job description. The raw payload is
// schema-checked and returned undecoded so the caller owns
// normalization. The call runs through the circuit breaker.
func (c *Client) Analyze(ctx context.Context, resumeText, jobDescription string) (map[string]any, error) {
	form := url.Values{}
	form.Set("resume_text", resumeText)
	form.Set("job_description", jobDescription)

	data, err := c.execScoring(func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, "/api/analyze", "analyze",
			"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	})
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.NewAnalyzeFailedError(err)
	}

	schemaLoader := gojsonschema.NewStringLoader(analyzeResponseSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, apperrors.NewMalformedPayloadError("analyze_response", err)
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		c.log.Warn("analyze response failed schema validation", map[string]interface{}{
			"errors": messages,
		})
		return nil, apperrors.NewAnalyzeFailedError(
			&schemaError{details: strings.Join(messages, "; ")})
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, apperrors.NewMalformedPayloadError("analyze_response", err)
	}
	return payload, nil
}

// Optimize asks the backend to rewrite the resume around the missing
// keywords. The keywords travel as a JSON array inside the form field.
// The call runs through the circuit breaker.
func (c *Client) Optimize(ctx context.Context, resumeText, jobDescription string, missingKeywords []string) (*OptimizeResponse, error) {
	if missingKeywords == nil {
		missingKeywords = []string{}
	}
	encoded, err := json.Marshal(missingKeywords)
	if err != nil {
		return nil, apperrors.NewMalformedPayloadError("missing_keywords", err)
	}

	form := url.Values{}
	form.Set("resume_text", resumeText)
	form.Set("job_description", jobDescription)
	form.Set("missing_keywords", string(encoded))

	data, err := c.execScoring(func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, "/api/optimize", "optimize",
			"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	})
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.NewOptimizeFailedError(err)
	}

	var resp OptimizeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, apperrors.NewMalformedPayloadError("optimize_response", err)
	}
	if !resp.Success || resp.OptimizedText == "" {
		return nil, apperrors.NewOptimizeFailedError(&schemaError{details: "backend reported no optimized text"})
	}
	return &resp, nil
}

type schemaError struct {
	details string
}

func (e *schemaError) Error() string {
	return e.details
}
