package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePortalSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/portal_sessions", r.URL.Path)
		assert.Equal(t, "Bearer bill-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cus_123", req["customer_id"])

		_ = json.NewEncoder(w).Encode(PortalSession{
			ID:        "ps_1",
			URL:       "https://billing.northwindmsp.com/p/ps_1",
			ExpiresAt: time.Now().Add(30 * time.Minute).UTC(),
		})
	}))
	defer srv.Close()

	c := NewClient("bill-key", WithBaseURL(srv.URL))
	sess, err := c.CreatePortalSession(context.Background(), "cus_123")
	require.NoError(t, err)
	assert.Equal(t, "ps_1", sess.ID)
	assert.Contains(t, sess.URL, "/p/ps_1")
}

func TestCreatePortalSessionUnknownCustomer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("bill-key", WithBaseURL(srv.URL))
	_, err := c.CreatePortalSession(context.Background(), "cus_missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoCustomer))
}

func TestCreatePortalSessionServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("bill-key", WithBaseURL(srv.URL))
	_, err := c.CreatePortalSession(context.Background(), "cus_123")
	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrNoCustomer))
}
