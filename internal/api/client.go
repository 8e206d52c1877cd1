// Package api implements the HTTP client for the remote ATS backend.
// All responses pass through a single decode path that maps backend
// error bodies and auth failures onto the engine's error taxonomy.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"atsctl/internal/common/config"
	apperrors "atsctl/internal/common/errors"
	"atsctl/internal/common/logger"
	"atsctl/internal/common/metrics"
	"atsctl/internal/storage"
)

// Client talks to the ATS backend. The bearer token is read from the
// session tier on every request so a re-login in another process is
// picked up without restart.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	store      storage.Store
	log        logger.Logger
}

// New creates a backend client from configuration.
func New(cfg config.BackendConfig, store storage.Store, log logger.Logger) *Client {
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.Timeout) * time.Millisecond,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		store:   store,
		log:     log,
	}

	if cfg.Breaker.Enabled {
		settings := gobreaker.Settings{
			Name:    "ats-backend",
			Timeout: time.Duration(cfg.Breaker.OpenTimeout) * time.Millisecond,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= cfg.Breaker.MinRequests &&
					failureRatio >= cfg.Breaker.FailureThreshold
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Warn("circuit breaker state changed", map[string]interface{}{
					"name": name,
					"from": from.String(),
					"to":   to.String(),
				})
			},
		}
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](settings)
	}

	return c
}

// errorBody is the backend's error envelope. FastAPI-style services put
// the human-readable message under "detail".
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (b errorBody) message() string {
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	// Validation errors arrive as structured arrays; surface them raw.
	return string(b.Detail)
}

// do performs one request and maps the response onto the error
// taxonomy. A 204 returns a nil body. The endpoint label keeps metric
// cardinality bounded, so callers pass the route template, not the
// concrete path.
func (c *Client) do(ctx context.Context, method, path, endpoint, contentType string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewNetworkFailureError(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperrors.NewNetworkFailureError(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "network_error").Inc()
		return nil, apperrors.NewNetworkFailureError(err)
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkFailureError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// The stored token is dead weight now.
		if remErr := c.store.Remove(ctx, storage.ScopeSession, storage.KeyAccessToken); remErr != nil {
			c.log.WithError(remErr).Warn("failed to clear stale access token", nil)
		}
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return nil, apperrors.NewAuthRequiredError(eb.message())
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return nil, apperrors.NewBackendRejectedError(resp.StatusCode, eb.message())
	}

	return data, nil
}

func (c *Client) token(ctx context.Context) string {
	value, err := c.store.Peek(ctx, storage.ScopeSession, storage.KeyAccessToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.WithError(err).Warn("failed to read access token", nil)
		}
		return ""
	}
	return string(value)
}

// execScoring routes a scoring call through the circuit breaker when
// one is configured.
func (c *Client) execScoring(fn func() ([]byte, error)) ([]byte, error) {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

func (c *Client) getJSON(ctx context.Context, path, endpoint string, out interface{}) error {
	data, err := c.do(ctx, http.MethodGet, path, endpoint, "", nil)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewMalformedPayloadError(endpoint, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path, endpoint string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return apperrors.NewMalformedPayloadError(endpoint, err)
	}
	data, err := c.do(ctx, http.MethodPost, path, endpoint, "application/json", strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewMalformedPayloadError(endpoint, err)
	}
	return nil
}

func (c *Client) delete(ctx context.Context, path, endpoint string) error {
	_, err := c.do(ctx, http.MethodDelete, path, endpoint, "", nil)
	return err
}
