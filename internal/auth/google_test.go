package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/drytrack/drytrack-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewGoogleProviderDisabledWithoutCredentials(t *testing.T) {
	assert.Nil(t, NewGoogleProvider(config.GoogleOAuthConfig{}))
}

func TestGoogleProviderAuthCodeURL(t *testing.T) {
	p := NewGoogleProvider(config.GoogleOAuthConfig{ClientID: "cid", ClientSecret: "sec", RedirectURL: "http://localhost/login/google"})
	require.NotNil(t, p)
	u, err := url.Parse(p.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "cid", u.Query().Get("client_id"))
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "http://localhost/login/google", u.Query().Get("redirect_uri"))
}

func TestGoogleProviderEmail(t *testing.T) {
	verified := true
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(googleUserInfo{Email: "staff@capas.ph", VerifiedEmail: verified})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     "cid",
			ClientSecret: "sec",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		userInfoURL: srv.URL + "/userinfo",
	}

	email, err := p.Email(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "staff@capas.ph", email)

	verified = false
	_, err = p.Email(context.Background(), "code")
	assert.Error(t, err)

	_, err = p.Email(context.Background(), "")
	assert.Error(t, err)
}
