// internal/dashboard/dashboard_test.go
package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsctl/internal/api"
	"atsctl/internal/common/config"
	"atsctl/internal/common/logger"
	"atsctl/internal/history"
	"atsctl/internal/reconcile"
	"atsctl/internal/storage"
)

// ==========================
// Test Helper Functions
// ==========================

func newService(t *testing.T, handler http.Handler) *Service {
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
	hist := history.NewService(client, reconcile.NewPropagator(store, log), log)
	return NewService(client, hist, log)
}

// ==========================
// Load
// ==========================

func TestLoad_BothHalvesSucceed(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/resumes":
			w.Write([]byte(`[{"id":1,"filename":"cv.pdf"}]`))
		case "/api/analyses":
			w.Write([]byte(`[
				{"id":1,"ats_score":90},
				{"id":2,"ats_score":70},
				{"id":3,"ats_score":80}
			]`))
		}
	}))

	data, err := service.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, data.Resumes, 1)
	assert.Equal(t, 3, data.TotalAnalyses)
	assert.Equal(t, 80.0, data.AverageScore)
	assert.Equal(t, 90.0, data.BestScore)
	assert.Equal(t, 2, data.HighBandCount)
	assert.NoError(t, data.ResumesErr)
	assert.NoError(t, data.AnalysesErr)
}

func TestLoad_OneFailedHalfDegrades(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/resumes":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"resumes down"}`))
		case "/api/analyses":
			w.Write([]byte(`[{"id":1,"ats_score":65}]`))
		}
	}))

	data, err := service.Load(context.Background())
	require.NoError(t, err)

	assert.Error(t, data.ResumesErr)
	assert.Empty(t, data.Resumes)
	assert.Equal(t, 1, data.TotalAnalyses)
	assert.Equal(t, 65.0, data.AverageScore)
}

func TestLoad_BothHalvesFailing(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"everything down"}`))
	}))

	_, err := service.Load(context.Background())
	assert.Error(t, err)
}
