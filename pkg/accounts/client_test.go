package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions/verify", r.URL.Path)
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "svc-key", r.Header.Get("X-Api-Key"))

		_ = json.NewEncoder(w).Encode(User{
			ID: "u-1", Email: "jane@acme.test", Role: "client", FullName: "Jane Doe",
		})
	}))
	defer srv.Close()

	c := NewClient("svc-key", WithBaseURL(srv.URL))
	u, err := c.VerifySession(context.Background(), "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "client", u.Role)
}

func TestVerifySessionEmptyToken(t *testing.T) {
	t.Parallel()

	c := NewClient("svc-key")
	_, err := c.VerifySession(context.Background(), "")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnauthorized))
}

func TestVerifySessionExpired(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("svc-key", WithBaseURL(srv.URL))
	_, err := c.VerifySession(context.Background(), "tok-stale")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnauthorized))
}

func TestVerifySessionMissingUserID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"email":"x@y.test"}`))
	}))
	defer srv.Close()

	c := NewClient("svc-key", WithBaseURL(srv.URL))
	_, err := c.VerifySession(context.Background(), "tok-abc")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnauthorized))
}
