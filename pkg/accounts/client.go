// Package accounts provides a client for the hosted auth platform.
// Sign-in and sign-up happen against that platform directly; this
// client only turns a session token into a verified user.
package accounts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the auth operations the portal uses.
type Client interface {
	// VerifySession validates a session token and returns the user it
	// belongs to. Returns ErrUnauthorized for missing/expired tokens.
	VerifySession(ctx context.Context, token string) (*User, error)
}

// User is the authenticated account as reported by the auth platform.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

// ErrUnauthorized is returned when the token is missing, expired, or
// otherwise not vouched for.
var ErrUnauthorized = eris.New("accounts: session not authorized")

// Option configures the accounts client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an accounts client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://accounts.northwindmsp.com",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) VerifySession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, eris.Wrap(ErrUnauthorized, "accounts: empty token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/sessions/verify", nil)
	if err != nil {
		return nil, eris.Wrap(err, "accounts: create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "accounts: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "accounts: read response body")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, eris.Wrapf(ErrUnauthorized, "accounts: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("accounts: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, eris.Wrap(err, "accounts: unmarshal response")
	}
	if u.ID == "" {
		return nil, eris.Wrap(ErrUnauthorized, "accounts: response missing user id")
	}
	return &u, nil
}
