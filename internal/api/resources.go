// internal/api/resources.go
package api

import (
	"context"
	"fmt"
)

// Resume is an uploaded resume document.
type Resume struct {
	ID              int64  `json:"id"`
	Filename        string `json:"filename"`
	FileContent     string `json:"file_content,omitempty"`
	Skills          string `json:"skills,omitempty"`
	ExperienceYears *int   `json:"experience_years,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// JobDescription is a stored job posting.
type JobDescription struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateResumeRequest uploads resume content.
type CreateResumeRequest struct {
	Filename        string `json:"filename"`
	FileContent     string `json:"file_content"`
	Skills          string `json:"skills,omitempty"`
	ExperienceYears *int   `json:"experience_years,omitempty"`
}

// CreateJobDescriptionRequest stores a job posting.
type CreateJobDescriptionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (c *Client) ListResumes(ctx context.Context) ([]Resume, error) {
	var resumes []Resume
	if err := c.getJSON(ctx, "/api/resumes", "resumes_list", &resumes); err != nil {
		return nil, err
	}
	return resumes, nil
}

func (c *Client) GetResume(ctx context.Context, id int64) (*Resume, error) {
	var resume Resume
	if err := c.getJSON(ctx, fmt.Sprintf("/api/resumes/%d", id), "resumes_get", &resume); err != nil {
		return nil, err
	}
	return &resume, nil
}

func (c *Client) CreateResume(ctx context.Context, req CreateResumeRequest) (*Resume, error) {
	var resume Resume
	if err := c.postJSON(ctx, "/api/resumes", "resumes_create", req, &resume); err != nil {
		return nil, err
	}
	return &resume, nil
}

func (c *Client) DeleteResume(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/resumes/%d", id), "resumes_delete")
}

func (c *Client) ListJobDescriptions(ctx context.Context) ([]JobDescription, error) {
	var jds []JobDescription
	if err := c.getJSON(ctx, "/api/job-descriptions", "jds_list", &jds); err != nil {
		return nil, err
	}
	return jds, nil
}

func (c *Client) CreateJobDescription(ctx context.Context, req CreateJobDescriptionRequest) (*JobDescription, error) {
	var jd JobDescription
	if err := c.postJSON(ctx, "/api/job-descriptions", "jds_create", req, &jd); err != nil {
		return nil, err
	}
	return &jd, nil
}

// ListAnalyses returns persisted analyses as raw payloads; callers
// normalize them, since rows vary between legacy flat columns and
// nested shapes.
func (c *Client) ListAnalyses(ctx context.Context) ([]map[string]any, error) {
	var rows []map[string]any
	if err := c.getJSON(ctx, "/api/analyses", "analyses_list", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) GetAnalysis(ctx context.Context, id int64) (map[string]any, error) {
	var row map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("/api/analyses/%d", id), "analyses_get", &row); err != nil {
		return nil, err
	}
	return row, nil
}

func (c *Client) DeleteAnalysis(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/analyses/%d", id), "analyses_delete")
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/api/health", "health", nil)
}
