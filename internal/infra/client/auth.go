package client

import (
	"context"
	"net/http"

	"github.com/clubbook/members-book-go/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token.
func (c *APIClient) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := c.do(ctx, "Login", http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GuestLogin issues a read-only visitor token. No credentials needed.
func (c *APIClient) GuestLogin(ctx context.Context) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := c.do(ctx, "GuestLogin", http.MethodPost, "/auth/guest-login", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the token server side. Callers clear local state
// regardless of the outcome.
func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, "Logout", http.MethodPost, "/auth/logout", nil, nil)
}

// Validate asks the backend whether the stored token is still good and
// returns the session it belongs to.
func (c *APIClient) Validate(ctx context.Context) (*domain.Session, error) {
	var out domain.Session
	if err := c.do(ctx, "Validate", http.MethodPost, "/auth/validate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
