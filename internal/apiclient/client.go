// Package apiclient is a typed HTTP client for the console auth endpoints.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hookpost/console-agent/internal/config"
	"github.com/hookpost/console-agent/internal/serviceerr"
)

// TokenResponse is the wire shape returned by both the login and the refresh
// endpoints. Expiration timestamps are ISO-8601.
type TokenResponse struct {
	AccessToken            string    `json:"access_token"`
	AccessTokenExpiration  time.Time `json:"access_token_expiration"`
	RefreshToken           string    `json:"refresh_token"`
	RefreshTokenExpiration time.Time `json:"refresh_token_expiration"`
	Email                  string    `json:"email"`
	FirstName              string    `json:"first_name"`
	LastName               string    `json:"last_name"`
}

type RegistrationRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// RegistrationResponse identifies the created user and its personal organization.
type RegistrationResponse struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.API) (*Client, error) {
	if err := initMeters(); err != nil {
		return nil, err
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Login exchanges credentials for a token pair. Credential rejection is
// surfaced as serviceerr.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var tokens TokenResponse
	if err := c.post(ctx, "login", "/auth/login", body, "", &tokens); err != nil {
		return TokenResponse{}, err
	}

	return tokens, nil
}

// Refresh mints a new token pair using the refresh token as credential.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	var tokens TokenResponse
	if err := c.post(ctx, "refresh", "/auth/refresh", nil, refreshToken, &tokens); err != nil {
		return TokenResponse{}, err
	}

	return tokens, nil
}

// Logout invalidates the session server-side. The response body is ignored.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.post(ctx, "logout", "/auth/logout", nil, accessToken, nil)
}

// Register creates a new user account and its personal organization.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) (RegistrationResponse, error) {
	if err := validateRegistration(req); err != nil {
		return RegistrationResponse{}, err
	}

	var created RegistrationResponse
	if err := c.post(ctx, "register", "/register", req, "", &created); err != nil {
		return RegistrationResponse{}, err
	}

	return created, nil
}

func (c *Client) post(ctx context.Context, operation, path string, body any, bearer string, decodeInto any) error {
	ctx, finish := startOperation(ctx, operation)

	err := c.doPost(ctx, path, body, bearer, decodeInto)
	finish(err)

	return err
}

func (c *Client) doPost(ctx context.Context, path string, body any, bearer string, decodeInto any) error {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if decodeInto == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(decodeInto); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// problem is the error body the API returns (RFC 7807 style).
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func statusError(resp *http.Response) error {
	var p problem
	_ = json.NewDecoder(resp.Body).Decode(&p)

	detail := p.Detail
	if detail == "" {
		detail = p.Title
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if p.Type == "RegistrationDisabled" {
			return serviceerr.ErrRegistrationDisabled
		}
		if detail != "" {
			return fmt.Errorf("%w: %s", serviceerr.ErrInvalidCredentials, detail)
		}
		return serviceerr.ErrInvalidCredentials
	case http.StatusNotFound:
		return serviceerr.ErrNotFound
	default:
		if detail != "" {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
