// Package billing provides a client for the payment provider's hosted
// customer portal. The portal never touches card data; it only mints
// short-lived portal sessions and redirects the browser there.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the billing operations the portal uses.
type Client interface {
	// CreatePortalSession mints a hosted-portal session for the given
	// billing customer and returns its redirect URL.
	CreatePortalSession(ctx context.Context, customerID string) (*PortalSession, error)
}

// PortalSession is a short-lived hosted billing portal session.
type PortalSession struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrNoCustomer is returned when the customer ID is unknown to the
// payment provider.
var ErrNoCustomer = eris.New("billing: unknown customer")

// Option configures the billing client.
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

// NewClient creates a billing client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://billing.northwindmsp.com",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) CreatePortalSession(ctx context.Context, customerID string) (*PortalSession, error) {
	payload, err := json.Marshal(map[string]string{"customer_id": customerID})
	if err != nil {
		return nil, eris.Wrap(err, "billing: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/portal_sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "billing: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "billing: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "billing: read response body")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, eris.Wrapf(ErrNoCustomer, "billing: customer %s", customerID)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, eris.Errorf("billing: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var sess PortalSession
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, eris.Wrap(err, "billing: unmarshal response")
	}
	return &sess, nil
}
