// internal/api/auth.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	apperrors "atsctl/internal/common/errors"
)

// User is the authenticated account as the backend reports it.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	IsActive bool   `json:"is_active"`
}

// TokenResponse is the login grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// Login exchanges credentials for a bearer token. The backend takes
// OAuth2 password-grant form fields, so the email goes in "username".
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	data, err := c.do(ctx, http.MethodPost, "/api/auth/login", "auth_login",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, apperrors.NewMalformedPayloadError("auth_login", err)
	}
	return &token, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.postJSON(ctx, "/api/auth/register", "auth_register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/api/auth/me", "auth_me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
