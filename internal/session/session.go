// Package session owns authentication state: acquiring a bearer token,
// persisting it in the session tier, and judging whether it is still
// usable without a round trip.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"atsctl/internal/api"
	apperrors "atsctl/internal/common/errors"
	"atsctl/internal/common/logger"
	"atsctl/internal/storage"
)

type Manager struct {
	client *api.Client
	store  storage.Store
	log    logger.Logger
}

func NewManager(client *api.Client, store storage.Store, log logger.Logger) *Manager {
	return &Manager{client: client, store: store, log: log}
}

// Login exchanges credentials for a token and persists it. Subsequent
// requests pick the token up from the session tier automatically.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	token, err := m.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if token.AccessToken == "" {
		return apperrors.NewAuthRequiredError("login returned no token")
	}
	if err := m.store.Put(ctx, storage.ScopeSession, storage.KeyAccessToken, []byte(token.AccessToken)); err != nil {
		return apperrors.NewStorageWriteFailedError(string(storage.ScopeSession), storage.KeyAccessToken, err)
	}
	m.log.Info("logged in", map[string]interface{}{"email": email})
	return nil
}

// Register creates an account without logging in.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	return m.client.Register(ctx, req)
}

// Logout drops the stored token. The backend keeps no server-side
// session, so this is purely local.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Remove(ctx, storage.ScopeSession, storage.KeyAccessToken); err != nil {
		return apperrors.NewStorageWriteFailedError(string(storage.ScopeSession), storage.KeyAccessToken, err)
	}
	return nil
}

// CurrentUser resolves the account behind the stored token.
func (m *Manager) CurrentUser(ctx context.Context) (*api.User, error) {
	if _, err := m.Token(ctx); err != nil {
		return nil, err
	}
	return m.client.Me(ctx)
}

// Token returns the stored token, rejecting tokens that are locally
// known to be expired. Expiry is read from the JWT claims without
// signature verification; the backend remains the authority.
func (m *Manager) Token(ctx context.Context) (string, error) {
	value, err := m.store.Peek(ctx, storage.ScopeSession, storage.KeyAccessToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperrors.NewAuthRequiredError("no stored token")
		}
		return "", apperrors.NewStorageReadFailedError(string(storage.ScopeSession), storage.KeyAccessToken, err)
	}

	token := string(value)
	if expired, expiry := tokenExpired(token); expired {
		if remErr := m.store.Remove(ctx, storage.ScopeSession, storage.KeyAccessToken); remErr != nil {
			m.log.WithError(remErr).Warn("failed to drop expired token", nil)
		}
		return "", apperrors.NewAuthRequiredError("token expired at " + expiry.Format(time.RFC3339))
	}
	return token, nil
}

// IsAuthenticated reports whether a usable token is stored.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, err := m.Token(ctx)
	return err == nil
}

// tokenExpired decodes the claims unverified and checks exp. Opaque or
// claim-less tokens are treated as live; the backend decides.
func tokenExpired(tokenString string) (bool, time.Time) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return false, time.Time{}
	}
	expiry, err := token.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false, time.Time{}
	}
	if expiry.Time.Before(time.Now()) {
		return true, expiry.Time
	}
	return false, time.Time{}
}
