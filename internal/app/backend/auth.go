package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Identity is the authenticated actor as reported by the API.
type Identity struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmed   bool       `json:"email_confirmed"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Session is a live authentication state: tokens plus the identity they belong to.
type Session struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	User         Identity  `json:"user"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates an account and returns its first session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.session(ctx, "/auth/signup", credentials{Email: email, Password: password})
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.session(ctx, "/auth/signin", credentials{Email: email, Password: password})
}

// Refresh rotates the refresh token and returns a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return c.session(ctx, "/auth/refresh", map[string]string{"refresh_token": refreshToken})
}

// SignOut revokes every refresh token of the account behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/signout", nil, accessToken, nil)
	return authErrorFrom(err)
}

// Resend asks the API to send another verification email of the given type.
func (c *Client) Resend(ctx context.Context, kind, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/resend", nil, "", map[string]string{"type": kind, "email": email})
	return authErrorFrom(err)
}

// Verify confirms an email address with the token from a verification link.
func (c *Client) Verify(ctx context.Context, token string) (*Identity, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/verify", url.Values{"token": {token}}, "", nil)
	if err != nil {
		return nil, authErrorFrom(err)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, &AuthError{Kind: AuthRejected, Err: fmt.Errorf("failed to decode identity: %w", err)}
	}
	return &id, nil
}

// User returns the identity behind accessToken.
func (c *Client) User(ctx context.Context, accessToken string) (*Identity, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/user", nil, accessToken, nil)
	if err != nil {
		return nil, authErrorFrom(err)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, &AuthError{Kind: AuthRejected, Err: fmt.Errorf("failed to decode identity: %w", err)}
	}
	return &id, nil
}

func (c *Client) session(ctx context.Context, path string, body any) (*Session, error) {
	data, err := c.do(ctx, http.MethodPost, path, nil, "", body)
	if err != nil {
		return nil, authErrorFrom(err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &AuthError{Kind: AuthRejected, Err: fmt.Errorf("failed to decode session: %w", err)}
	}
	if s.AccessToken == "" || s.User.ID == "" {
		return nil, &AuthError{Kind: AuthRejected, Message: "session is missing tokens"}
	}
	return &s, nil
}
