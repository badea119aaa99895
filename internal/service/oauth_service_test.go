package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aura-be/internal/config"
	"aura-be/internal/model"
	"aura-be/internal/pkg/apperror"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/testutil"
	"aura-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestUsernameBase(t *testing.T) {
	cases := map[string]string{
		"Jane.Doe@example.com":    "jane.doe",
		"a@example.com":           "a__",
		"x+tag-1@example.com":     "xtag1",
		strings.Repeat("q", 40):   strings.Repeat("q", 24),
		"under_score@example.com": "under_score",
	}
	for in, want := range cases {
		got := usernameBase(in)
		assert.Equal(t, want, got, in)
		assert.True(t, usernamePattern.MatchString(got), got)
	}
}

func TestOAuthService_ProviderChecks(t *testing.T) {
	factory, _ := testutil.NewFactory(t)
	sessions := NewSessionService(factory, "secret", time.Hour)

	unconfigured := NewOAuthService(factory, sessions, nil, config.OAuthConfig{}, logger.NewNop())
	_, _, err := unconfigured.GetLoginURL(ProviderGoogle)
	assert.Equal(t, apperror.KindNotImplemented, apperror.KindOf(err))

	configured := NewOAuthService(factory, sessions, nil, config.OAuthConfig{
		GoogleClientID:    "client",
		GoogleRedirectURL: "http://localhost/callback",
	}, logger.NewNop())
	_, _, err = configured.GetLoginURL("github")
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	url, state, err := configured.GetLoginURL(ProviderGoogle)
	require.NoError(t, err)
	assert.NotEmpty(t, state)
	assert.Contains(t, url, "state="+state)
	assert.Contains(t, url, "client_id=client")
}

func TestOAuthService_HandleCallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "upstream-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer upstream-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(GoogleProfile{
			ID:      "google-123",
			Email:   "Social.User@example.com",
			Name:    "Social User",
			Picture: "http://img/p.png",
		})
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	factory, db := testutil.NewFactory(t)
	rec := &events.Recorder{}
	svc := NewOAuthService(factory, NewSessionService(factory, "secret", time.Hour), rec, config.OAuthConfig{
		GoogleClientID:     "client",
		GoogleClientSecret: "secret",
		GoogleRedirectURL:  "http://localhost/callback",
	}, logger.NewNop()).(*oauthService)
	svc.googleConf.Endpoint = oauth2.Endpoint{TokenURL: upstream.URL + "/token", AuthURL: upstream.URL + "/auth"}
	svc.userInfoURL = upstream.URL + "/userinfo"

	ctx := context.Background()
	first, err := svc.HandleCallback(ctx, ProviderGoogle, "code", "go-test")
	require.NoError(t, err)
	assert.Equal(t, "social.user@example.com", first.User.Email)
	assert.Equal(t, "social.user", first.User.Username)
	assert.True(t, first.User.Verified)
	assert.Equal(t, []string{events.TypeUserRegistered, events.TypeUserLogin}, rec.Types())

	// second login reuses the linked account
	second, err := svc.HandleCallback(ctx, ProviderGoogle, "code", "go-test")
	require.NoError(t, err)
	assert.Equal(t, first.User.Id, second.User.Id)

	var links int64
	require.NoError(t, db.Model(&model.UserProvider{}).Count(&links).Error)
	assert.Equal(t, int64(1), links)

	require.NoError(t, db.Delete(&model.User{}, "id = ?", first.User.Id).Error)
	_, err = svc.HandleCallback(ctx, ProviderGoogle, "code", "go-test")
	assert.Equal(t, "Account deleted", messageOf(t, err))
}
