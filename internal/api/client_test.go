// internal/api/client_test.go
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsctl/internal/common/config"
	apperrors "atsctl/internal/common/errors"
	"atsctl/internal/common/logger"
	"atsctl/internal/storage"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, handler http.Handler) (*Client, storage.Store) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	client := New(config.BackendConfig{
		BaseURL:        server.URL,
		Timeout:        5000,
		RequestsPerMin: 6000,
		Burst:          100,
	}, store, logger.NewNoOpLogger())
	return client, store
}

func putToken(t *testing.T, store storage.Store, token string) {
	require.NoError(t, store.Put(context.Background(), storage.ScopeSession, storage.KeyAccessToken, []byte(token)))
}

// ==========================
// Auth
// ==========================

func TestLogin_SendsFormCredentials(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer"}`))
	}))

	token, err := client.Login(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token.AccessToken)
}

func TestRequest_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"id":1,"email":"user@example.com","username":"user"}`))
	}))
	putToken(t, store, "tok-123")

	_, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestRequest_UnauthorizedClearsTokenAndMapsError(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	putToken(t, store, "stale")

	_, err := client.Me(context.Background())
	assert.Equal(t, apperrors.ErrCodeAuthRequired, apperrors.CodeOf(err))

	_, peekErr := store.Peek(context.Background(), storage.ScopeSession, storage.KeyAccessToken)
	assert.ErrorIs(t, peekErr, storage.ErrNotFound)
}

// ==========================
// Error Mapping
// ==========================

func TestRequest_BackendErrorUsesDetailField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"resume_text is required"}`))
	}))

	_, err := client.ListResumes(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBackendRejected, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "resume_text is required")
}

func TestRequest_BackendErrorWithoutDetailGetsDefaultMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))

	_, err := client.ListResumes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "An error occurred")
}

func TestRequest_NetworkFailureIsRetryable(t *testing.T) {
	store := storage.NewMemory()
	client := New(config.BackendConfig{
		BaseURL:        "http://127.0.0.1:1", // nothing listens here
		Timeout:        200,
		RequestsPerMin: 6000,
		Burst:          100,
	}, store, logger.NewNoOpLogger())

	_, err := client.ListResumes(context.Background())
	assert.Equal(t, apperrors.ErrCodeNetworkFailure, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestDeleteAnalysis_NoContentIsSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/analyses/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, client.DeleteAnalysis(context.Background(), 42))
}

// ==========================
// Scoring
// ==========================

func TestAnalyze_ValidPayloadPassesThrough(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "resume body", r.PostForm.Get("resume_text"))
		assert.Equal(t, "jd body", r.PostForm.Get("job_description"))
		w.Write([]byte(`{"ats_score":77.5,"gaps":["Kubernetes"]}`))
	}))

	payload, err := client.Analyze(context.Background(), "resume body", "jd body")
	require.NoError(t, err)
	assert.Equal(t, 77.5, payload["ats_score"])
}

func TestAnalyze_PayloadWithoutScoreFailsValidation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"gaps":["Kubernetes"]}`))
	}))

	_, err := client.Analyze(context.Background(), "resume", "jd")
	assert.Equal(t, apperrors.ErrCodeAnalyzeFailed, apperrors.CodeOf(err))
}

func TestOptimize_EncodesKeywordsAsJSONArray(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.JSONEq(t, `["Kubernetes","AWS"]`, r.PostForm.Get("missing_keywords"))
		w.Write([]byte(`{"success":true,"optimized_text":"better resume","keywords_used":["Kubernetes"]}`))
	}))

	resp, err := client.Optimize(context.Background(), "resume", "jd", []string{"Kubernetes", "AWS"})
	require.NoError(t, err)
	assert.Equal(t, "better resume", resp.OptimizedText)
	assert.Equal(t, []string{"Kubernetes"}, resp.KeywordsUsed)
}

func TestOptimize_UnsuccessfulResponseIsAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"detail":"model unavailable"}`))
	}))

	_, err := client.Optimize(context.Background(), "resume", "jd", nil)
	assert.Equal(t, apperrors.ErrCodeOptimizeFailed, apperrors.CodeOf(err))
}

// ==========================
// Circuit Breaker
// ==========================

func TestAnalyze_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"boom"}`))
	}))
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	client := New(config.BackendConfig{
		BaseURL:        server.URL,
		Timeout:        5000,
		RequestsPerMin: 6000,
		Burst:          100,
		Breaker: config.BreakerConfig{
			Enabled:          true,
			MinRequests:      3,
			FailureThreshold: 0.6,
			OpenTimeout:      30000,
		},
	}, store, logger.NewNoOpLogger())

	for i := 0; i < 3; i++ {
		_, err := client.Analyze(context.Background(), "resume", "jd")
		require.Error(t, err)
	}

	// The breaker is open now; the request never reaches the server.
	_, err := client.Analyze(context.Background(), "resume", "jd")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAnalyzeFailed, apperrors.CodeOf(err))
}
