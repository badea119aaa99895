package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aura-be/internal/entity"
	"aura-be/internal/pkg/logger"
	"aura-be/internal/pkg/mailer"
	"aura-be/internal/pkg/serverutils"
	"aura-be/internal/repository/cache"
	"aura-be/internal/repository/unitofwork"
	"aura-be/internal/service"
	"aura-be/internal/testutil"
	internalWS "aura-be/internal/websocket"
	"aura-be/pkg/mood"
	"aura-be/pkg/moodai"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct{}

func (stubClassifier) ClassifyText(context.Context, string) (moodai.Result, error) {
	return moodai.Result{Mood: mood.Calm, Source: moodai.SourcePrimary, Raw: "calm"}, nil
}

func (stubClassifier) ClassifyImage(context.Context, []byte) (moodai.ImageResult, error) {
	return moodai.ImageResult{Mood: mood.Neutral}, nil
}

func (stubClassifier) ClassifyVideo(context.Context) (moodai.VideoResult, error) {
	return moodai.VideoResult{}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	app      *fiber.App
	factory  unitofwork.RepositoryFactory
	sessions service.ISessionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	factory, _ := testutil.NewFactory(t)
	log := logger.NewNop()

	mail := mailer.NewDispatcher(mailer.NewGoChannel(), mailer.NewLogSender(log), log)
	t.Cleanup(func() { _ = mail.Close() })
	mailCtx, stopMail := context.WithCancel(context.Background())
	t.Cleanup(stopMail)
	require.NoError(t, mail.Run(mailCtx))

	sessions := service.NewSessionService(factory, "test-secret", time.Hour)
	auth := serverutils.AuthMiddleware(sessions)
	posts := service.NewPostService(factory, cache.NewMemoryTrendingCache(time.Minute), nil, log)
	users := service.NewUserService(factory, mail, "http://client", log)
	moods := service.NewMoodService(factory, service.NewMoodGate(factory), stubClassifier{}, posts, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api")
	NewAuthController(service.NewAuthService(factory, sessions, mail, nil, "http://client", log), auth).RegisterRoutes(api)
	NewUserController(users, auth).RegisterRoutes(api)
	NewProfileController(users, auth).RegisterRoutes(api)
	NewPostController(posts, auth).RegisterRoutes(api)
	NewSearchController(service.NewSearchService(factory), auth).RegisterRoutes(api)
	NewMoodController(moods, auth, serverutils.NewUserRateLimiter(0.001, 1)).RegisterRoutes(api)
	NewSocialController(service.NewSocialService(factory, nil, log), auth).RegisterRoutes(api)
	hub := internalWS.NewHub(nil, log)
	NewDMController(service.NewDMService(factory, hub, nil, log), auth, sessions, hub, log).RegisterRoutes(api)

	return &harness{app: app, factory: factory, sessions: sessions}
}

// login seeds a user directly and returns a bearer token for it.
func (h *harness) login(t *testing.T, username string) (*entity.User, string) {
	t.Helper()
	ctx := context.Background()
	u := &entity.User{Email: username + "@example.com", Username: username}
	require.NoError(t, h.factory.NewUnitOfWork(ctx).UserRepository().Create(ctx, u))
	issued, err := h.sessions.Issue(ctx, u.Id)
	require.NoError(t, err)
	return u, issued.AccessToken
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@example.com", "username": "newbie", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "NEW@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))

	status, env = h.do(t, http.MethodGet, "/api/user/profile/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"email":"new@example.com"`)

	status, _ = h.do(t, http.MethodPost, "/api/auth/logout", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(t, http.MethodGet, "/api/user/profile/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestAuthRequestValidation(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, env.Message)

	status, env = h.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/posts/feed", "/api/search?q=x", "/api/mood/current", "/api/user/profile/me"} {
		status, env := h.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "Missing token", env.Message, path)
	}
}

func TestPostRoutes(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "poster")

	status, env := h.do(t, http.MethodPost, "/api/posts/create", token, map[string]interface{}{
		"caption": "hello world", "emotion": "happy", "tags": "sun, sea",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created struct {
		Id   string   `json:"id"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, []string{"sun", "sea"}, created.Tags)

	status, env = h.do(t, http.MethodPost, "/api/posts/like/"+created.Id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post liked", env.Message)

	// static segment wins over /:id
	status, env = h.do(t, http.MethodGet, "/api/posts/feed", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Feed retrieved", env.Message)

	status, env = h.do(t, http.MethodGet, "/api/posts/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid identifier format", env.Message)

	status, _ = h.do(t, http.MethodPost, "/api/posts/share/"+created.Id, token, nil)
	assert.Equal(t, http.StatusCreated, status)

	status, _ = h.do(t, http.MethodDelete, "/api/posts/delete/"+created.Id, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, http.MethodGet, "/api/posts/"+created.Id, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSearchRoutes(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "finder")
	h.login(t, "annika")

	status, env := h.do(t, http.MethodGet, "/api/search?q=%40ann", token, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Contains(t, string(env.Data), `"annika"`)

	status, _ = h.do(t, http.MethodGet, "/api/search?q=", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(t, http.MethodGet, "/api/search/suggest?q=a&limit=abc", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestMoodRoutesGateAndRateLimit(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "feeler")

	status, env := h.do(t, http.MethodGet, "/api/mood/current", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Mood feature disabled in preferences", env.Message)

	status, _ = h.do(t, http.MethodPut, "/api/user/preferences", token, map[string]bool{"mood_enabled": true})
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(t, http.MethodPost, "/api/mood/analyze-text", token, map[string]string{"text": "quiet morning"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Contains(t, string(env.Data), `"mood":"calm"`)

	// burst of one
	status, _ = h.do(t, http.MethodPost, "/api/mood/analyze-text", token, map[string]string{"text": "again"})
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = h.do(t, http.MethodGet, "/api/mood/summary/weekly", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProfileRoutes(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "renamer")

	status, env := h.do(t, http.MethodPut, "/api/profile/username", token, map[string]string{"username": "re_named"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Contains(t, string(env.Data), `"re_named"`)

	status, _ = h.do(t, http.MethodPut, "/api/profile/email", token, map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSocialRoutes(t *testing.T) {
	h := newHarness(t)
	me, token := h.login(t, "follower")
	other, _ := h.login(t, "followee")

	status, env := h.do(t, http.MethodPost, "/api/social/follow/"+other.Id.String(), token, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Contains(t, string(env.Data), `"following":true`)

	status, env = h.do(t, http.MethodPost, "/api/social/follow/"+me.Id.String(), token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot follow self", env.Message)

	status, env = h.do(t, http.MethodGet, "/api/social/followers/"+other.Id.String()+"?limit=500", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"limit":100`)
	assert.Contains(t, string(env.Data), `"follower"`)

	status, env = h.do(t, http.MethodGet, "/api/social/follow-status/"+other.Id.String(), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"i_follow":true`)
	assert.Contains(t, string(env.Data), `"follows_me":false`)
}

func TestDMRoutes(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "sender")
	peer, peerToken := h.login(t, "receiver")
	_, outsiderToken := h.login(t, "outsider")

	status, env := h.do(t, http.MethodPost, "/api/dm/thread", token, map[string]interface{}{
		"participants": []string{peer.Id.String()},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var thread struct {
		Id string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &thread))

	status, env = h.do(t, http.MethodPost, "/api/dm/threads/"+thread.Id+"/message", token, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, status, env.Message)

	status, _ = h.do(t, http.MethodPost, "/api/dm/threads/"+thread.Id+"/message", token, map[string]string{"content": "hey"})
	require.Equal(t, http.StatusCreated, status)

	status, env = h.do(t, http.MethodGet, "/api/dm/threads/"+thread.Id+"/messages", peerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"content":"hey"`)

	status, _ = h.do(t, http.MethodGet, "/api/dm/threads/"+thread.Id+"/messages", outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// plain GET without an upgrade is refused before any auth check
	status, _ = h.do(t, http.MethodGet, "/api/dm/ws", "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
