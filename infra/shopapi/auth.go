package shopapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/clovermart/storefront/internal/app/domain/user"
)

// AuthClient handles registration, login, logout and session validation.
type AuthClient struct {
	client *Client
}

// RegisterInput is the payload for creating a new account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    user.User `json:"user"`
}

// Register creates a new account. Registration does not authenticate; the
// caller logs in afterwards.
func (a *AuthClient) Register(ctx context.Context, in RegisterInput) error {
	var resp authResponse
	if err := a.client.do(ctx, "auth", http.MethodPost, "/auth/register", in, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{StatusCode: http.StatusBadRequest, Message: resp.Message}
	}
	return nil
}

// Login authenticates with email/password. On success the returned bearer
// token is persisted before Login returns, so every subsequent call carries
// it.
func (a *AuthClient) Login(ctx context.Context, email, password string) (user.User, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp authResponse
	if err := a.client.do(ctx, "auth", http.MethodPost, "/auth/login", payload, &resp); err != nil {
		return user.User{}, err
	}
	if !resp.Success || resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "invalid credentials"
		}
		return user.User{}, &Error{StatusCode: http.StatusUnauthorized, Message: msg}
	}

	if err := a.client.setToken(resp.Token); err != nil {
		return user.User{}, err
	}
	return resp.User, nil
}

// Logout invalidates the session server-side. The local token is cleared
// before Logout returns, whether or not the remote call succeeded.
func (a *AuthClient) Logout(ctx context.Context) error {
	remoteErr := a.client.do(ctx, "auth", http.MethodGet, "/auth/logout", nil, nil)
	if clearErr := a.client.clearToken(); clearErr != nil {
		return errors.Join(remoteErr, clearErr)
	}
	if remoteErr != nil {
		return fmt.Errorf("remote logout: %w", remoteErr)
	}
	return nil
}

// Me validates the held token against the backend and returns the current
// user.
func (a *AuthClient) Me(ctx context.Context) (user.User, error) {
	var u user.User
	if err := a.client.do(ctx, "auth", http.MethodGet, "/auth/me", nil, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}
