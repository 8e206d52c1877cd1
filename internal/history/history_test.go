// internal/history/history_test.go
package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsctl/internal/analysis"
	"atsctl/internal/api"
	"atsctl/internal/common/config"
	apperrors "atsctl/internal/common/errors"
	"atsctl/internal/common/logger"
	"atsctl/internal/reconcile"
	"atsctl/internal/storage"
)

// ==========================
// Test Helper Functions
// ==========================

func newService(t *testing.T, handler http.Handler) (*Service, storage.Store) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	log := logger.NewNoOpLogger()
	client := api.New(config.BackendConfig{
		BaseURL:        server.URL,
		Timeout:        5000,
		RequestsPerMin: 6000,
		Burst:          100,
	}, store, log)
	return NewService(client, reconcile.NewPropagator(store, log), log), store
}

func entry(id int64, score float64, title, filename, createdAt string) analysis.HistoryEntry {
	e := analysis.HistoryEntry{
		AnalysisRecord: analysis.AnalysisRecord{ID: &id, ATSScore: score},
		CreatedAt:      createdAt,
		JobTitle:       title,
		ResumeFilename: filename,
	}
	return e
}

func ids(entries []analysis.HistoryEntry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e.ID)
	}
	return out
}

// ==========================
// List
// ==========================

func TestList_NormalizesMixedRowsAndSkipsUnusable(t *testing.T) {
	service, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyses", r.URL.Path)
		w.Write([]byte(`[
			{"id":1,"ats_score":88,"created_at":"2026-01-10T00:00:00Z",
			 "resume":{"filename":"cv.pdf"},"job_description":{"title":"SRE","description":"jd"}},
			{"id":2,"score":61,"missing_keywords":"[\"Kubernetes\"]"},
			{"id":3,"note":"no score here"}
		]`))
	}))

	entries, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []int64{1, 2}, ids(entries))
	assert.Equal(t, "SRE", entries[0].JobTitle)
	assert.Equal(t, []string{"Kubernetes"}, entries[1].MissingKeywords())
}

// ==========================
// Remove
// ==========================

func TestRemove_SuccessFiltersByIDPreservingOrder(t *testing.T) {
	service, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/analyses/2", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	list := []analysis.HistoryEntry{
		entry(1, 90, "A", "a.pdf", "2026-01-01"),
		entry(2, 70, "B", "b.pdf", "2026-02-01"),
		entry(3, 50, "C", "c.pdf", "2026-03-01"),
	}

	remaining, err := service.Remove(context.Background(), list, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(remaining))
}

func TestRemove_FailureLeavesListUntouched(t *testing.T) {
	service, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"delete failed"}`))
	}))

	list := []analysis.HistoryEntry{
		entry(1, 90, "A", "a.pdf", "2026-01-01"),
		entry(2, 70, "B", "b.pdf", "2026-02-01"),
	}

	remaining, err := service.Remove(context.Background(), list, 2)
	assert.Equal(t, apperrors.ErrCodeDeleteFailed, apperrors.CodeOf(err))
	assert.Equal(t, []int64{1, 2}, ids(remaining))
}

func TestRemove_UnauthorizedSurfacesAuthError(t *testing.T) {
	service, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))

	list := []analysis.HistoryEntry{entry(1, 90, "A", "a.pdf", "2026-01-01")}
	remaining, err := service.Remove(context.Background(), list, 1)
	assert.Equal(t, apperrors.ErrCodeAuthRequired, apperrors.CodeOf(err))
	assert.Len(t, remaining, 1)
}

// ==========================
// Filter
// ==========================

func TestFilter_CriteriaIntersect(t *testing.T) {
	list := []analysis.HistoryEntry{
		entry(1, 92, "Platform Engineer", "cv-2026.pdf", "2026-01-10T00:00:00Z"),
		entry(2, 75, "Platform Engineer", "cv-2025.pdf", "2025-06-01T00:00:00Z"),
		entry(3, 45, "Data Analyst", "cv-2026.pdf", "2026-02-01T00:00:00Z"),
		entry(4, 81, "Backend Engineer", "old.pdf", "2026-03-15T00:00:00Z"),
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{
			name:     "no criteria passes everything",
			criteria: Criteria{},
			want:     []int64{1, 2, 3, 4},
		},
		{
			name:     "query matches title case-insensitively",
			criteria: Criteria{Query: "platform"},
			want:     []int64{1, 2},
		},
		{
			name:     "query matches filename",
			criteria: Criteria{Query: "old.pdf"},
			want:     []int64{4},
		},
		{
			name:     "year filter",
			criteria: Criteria{Year: "2026"},
			want:     []int64{1, 3, 4},
		},
		{
			name:     "band filter",
			criteria: Criteria{Band: analysis.BandHigh},
			want:     []int64{1, 4},
		},
		{
			name:     "criteria intersect",
			criteria: Criteria{Query: "engineer", Year: "2026", Band: analysis.BandHigh},
			want:     []int64{1, 4},
		},
		{
			name:     "empty intersection",
			criteria: Criteria{Query: "analyst", Band: analysis.BandHigh},
			want:     []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(list, tt.criteria)
			assert.Equal(t, tt.want, ids(got))
			// The input list is never mutated.
			assert.Len(t, list, 4)
		})
	}
}

func TestFilter_BandBoundaries(t *testing.T) {
	list := []analysis.HistoryEntry{
		entry(1, 80, "A", "", ""),
		entry(2, 79.9, "B", "", ""),
		entry(3, 60, "C", "", ""),
		entry(4, 59.9, "D", "", ""),
	}

	assert.Equal(t, []int64{1}, ids(Filter(list, Criteria{Band: analysis.BandHigh})))
	assert.Equal(t, []int64{2, 3}, ids(Filter(list, Criteria{Band: analysis.BandMedium})))
	assert.Equal(t, []int64{4}, ids(Filter(list, Criteria{Band: analysis.BandLow})))
}

// ==========================
// Select / Export
// ==========================

func TestSelect_StagesEntryForDetailsView(t *testing.T) {
	service, store := newService(t, http.NotFoundHandler())
	ctx := context.Background()
	e := entry(7, 66, "SRE", "cv.pdf", "2026-01-01")

	require.NoError(t, service.Select(ctx, &e))

	loader := reconcile.NewLoader(store, logger.NewNoOpLogger())
	result := loader.Load(ctx)
	assert.Equal(t, reconcile.SourceSelectedHandoff, result.Source)
	assert.Equal(t, 66.0, result.Record.ATSScore)
}

func TestExport_ProducesReadableJSON(t *testing.T) {
	data, err := Export([]analysis.HistoryEntry{entry(1, 88, "SRE", "cv.pdf", "2026-01-01")})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ats_score": 88`)
	assert.Contains(t, string(data), `"job_title": "SRE"`)
}
