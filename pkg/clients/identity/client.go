// Package identity talks to the Identity Toolkit REST API used for operator accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/motofleet/internal/config"
)

// Known error codes returned by the identity API.
const (
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeEmailNotFound      = "EMAIL_NOT_FOUND"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeInvalidIDToken     = "INVALID_ID_TOKEN"
)

// Client exposes the account operations used by the fleet.
type Client interface {
	SignIn(ctx context.Context, email, password string) (*AuthResponse, error)
	SignUp(ctx context.Context, email, password string) (*AuthResponse, error)
	Lookup(ctx context.Context, idToken string) (*LookupResponse, error)
	UpdateProfile(ctx context.Context, idToken, displayName string) (*UpdateResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an identity client. The API key travels as the "key" query parameter.
func NewClient(cfg config.IdentityConfig, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetQueryParam("key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// AuthResponse is returned by sign-in and sign-up.
type AuthResponse struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	DisplayName  string `json:"displayName,omitempty"`
}

// User is one account returned by a lookup.
type User struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// LookupResponse lists the accounts matching an ID token.
type LookupResponse struct {
	Users []User `json:"users"`
}

// UpdateResponse is returned after a profile update.
type UpdateResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// APIError is a non-2xx answer from the identity API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity api error: status=%d, message=%s", e.Status, e.Message)
}

// Code returns the error code without the " : detail" suffix some messages carry.
func (e *APIError) Code() string {
	code, _, _ := strings.Cut(e.Message, " : ")
	return strings.TrimSpace(code)
}

// ErrorCode extracts the identity error code from err, or "" when err is not an API error.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code()
	}
	return ""
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn authenticates with e-mail and password.
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	result := new(AuthResponse)
	if err := c.post(ctx, "/accounts:signInWithPassword", credentialsBody(email, password), result); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return result, nil
}

// SignUp creates an account.
func (c *APIClient) SignUp(ctx context.Context, email, password string) (*AuthResponse, error) {
	result := new(AuthResponse)
	if err := c.post(ctx, "/accounts:signUp", credentialsBody(email, password), result); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return result, nil
}

// Lookup resolves the accounts behind an ID token.
func (c *APIClient) Lookup(ctx context.Context, idToken string) (*LookupResponse, error) {
	result := new(LookupResponse)
	if err := c.post(ctx, "/accounts:lookup", map[string]any{"idToken": idToken}, result); err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return result, nil
}

// UpdateProfile changes the display name of the account behind idToken.
func (c *APIClient) UpdateProfile(ctx context.Context, idToken, displayName string) (*UpdateResponse, error) {
	body := map[string]any{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": true,
	}
	result := new(UpdateResponse)
	if err := c.post(ctx, "/accounts:update", body, result); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return result, nil
}

func credentialsBody(email, password string) map[string]any {
	return map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
}

func (c *APIClient) post(ctx context.Context, path string, body, result any) error {
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(apiErr).
		Post(path)
	if err != nil {
		return err
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode(), Message: apiErr.Error.Message}
	}
	return nil
}
