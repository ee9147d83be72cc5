// Package ticket provides a client for the helpdesk ticketing API used
// to open service tickets from portal submissions.
package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/northwind-msp/portal-api/internal/resilience"
)

// Client defines the helpdesk operations the portal uses.
type Client interface {
	// Create opens a ticket and returns the provider-assigned key.
	Create(ctx context.Context, req CreateRequest) (*Ticket, error)
}

// CreateRequest is the payload for opening a ticket.
type CreateRequest struct {
	Subject        string `json:"subject"`
	Description    string `json:"description"`
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
	Queue          string `json:"queue,omitempty"`
	Priority       string `json:"priority,omitempty"`
}

// Ticket is the created ticket as reported by the provider.
type Ticket struct {
	ID  string `json:"id"`
	Key string `json:"key"`
	URL string `json:"url,omitempty"`
}

// APIError is an error the provider itself reported: the service was
// reachable and answered, but rejected the request. Callers use this to
// distinguish a provider rejection from an unreachable service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ticket: provider returned %d: %s", e.StatusCode, e.Message)
}

// IsAPIError reports whether err chains to a provider-reported APIError.
func IsAPIError(err error) bool {
	var ae *APIError
	return eris.As(err, &ae)
}

// Option configures the ticket client.
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

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryConfig overrides the retry behavior for transient failures.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithCircuitBreaker routes requests through cb so a flapping provider
// is cut off instead of hammered.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *httpClient) {
		c.breaker = cb
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewClient creates a helpdesk client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://desk.northwindmsp.com",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     5 * time.Second,
			OnRetry:        resilience.RetryLogger("ticket", "create"),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) Create(ctx context.Context, req CreateRequest) (*Ticket, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ticket: rate limit wait")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "ticket: marshal request")
	}

	call := func(ctx context.Context) (*Ticket, error) {
		return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Ticket, error) {
			return c.doCreate(ctx, payload)
		})
	}

	if c.breaker != nil {
		return resilience.ExecuteVal(ctx, c.breaker, call)
	}
	return call(ctx)
}

func (c *httpClient) doCreate(ctx context.Context, payload []byte) (*Ticket, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/tickets", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "ticket: create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "ticket: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ticket: read response body")
	}

	// Transient statuses are wrapped so the retry loop tries again;
	// everything else 4xx/5xx is a final provider answer.
	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("ticket: status %d: %s", resp.StatusCode, string(body)),
			resp.StatusCode)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var t Ticket
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, eris.Wrap(err, "ticket: unmarshal response")
	}
	if t.Key == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "response missing ticket key"}
	}
	return &t, nil
}
