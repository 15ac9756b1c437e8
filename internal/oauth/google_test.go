package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"sso-backend/internal/domain"
)

func newFakeGoogle(t *testing.T, userinfo map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"google-access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userinfo)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogleProvider(t *testing.T, srv *httptest.Server) *GoogleProvider {
	t.Helper()

	p, err := NewGoogleProvider(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8000/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  srv.URL + "/auth",
			TokenURL: srv.URL + "/token",
		},
		UserInfoURL: srv.URL + "/userinfo",
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestNewGoogleProvider_RequiresCredentials(t *testing.T) {
	_, err := NewGoogleProvider(GoogleConfig{ClientID: "id"})
	assert.Error(t, err)
}

func TestGoogleProvider_AuthorizationURL(t *testing.T) {
	srv := newFakeGoogle(t, nil)
	p := newTestGoogleProvider(t, srv)

	raw := p.AuthorizationURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:8000/auth/google/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "email")
	assert.Equal(t, domain.ProviderGoogle, p.Name())
}

func TestGoogleProvider_ExchangeCode(t *testing.T) {
	srv := newFakeGoogle(t, map[string]any{
		"sub":            "123",
		"email":          "g@x.com",
		"email_verified": true,
		"name":           "G User",
	})
	p := newTestGoogleProvider(t, srv)

	user, err := p.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &domain.ExternalUser{Email: "g@x.com", FullName: "G User", Provider: domain.ProviderGoogle}, user)
}

func TestGoogleProvider_ExchangeCodeFailures(t *testing.T) {
	t.Run("bad code", func(t *testing.T) {
		p := newTestGoogleProvider(t, newFakeGoogle(t, map[string]any{"email": "g@x.com", "email_verified": true}))
		_, err := p.ExchangeCode(context.Background(), "bad-code")
		assert.Error(t, err)
	})

	t.Run("empty code", func(t *testing.T) {
		p := newTestGoogleProvider(t, newFakeGoogle(t, nil))
		_, err := p.ExchangeCode(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("missing email", func(t *testing.T) {
		p := newTestGoogleProvider(t, newFakeGoogle(t, map[string]any{"sub": "1", "email_verified": true}))
		_, err := p.ExchangeCode(context.Background(), "good-code")
		assert.Error(t, err)
	})

	t.Run("unverified email", func(t *testing.T) {
		p := newTestGoogleProvider(t, newFakeGoogle(t, map[string]any{"email": "g@x.com", "email_verified": false}))
		_, err := p.ExchangeCode(context.Background(), "good-code")
		assert.Error(t, err)
	})
}

func TestGoogleProvider_NameFallsBackToEmail(t *testing.T) {
	p := newTestGoogleProvider(t, newFakeGoogle(t, map[string]any{"email": "g@x.com", "email_verified": true}))

	user, err := p.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "g@x.com", user.FullName)
}
