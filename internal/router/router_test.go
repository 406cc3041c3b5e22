package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-entry-board/internal/cache"
	"go-entry-board/internal/config"
	"go-entry-board/internal/event"
	"go-entry-board/internal/handler"
	"go-entry-board/internal/middleware"
	"go-entry-board/internal/model"
	"go-entry-board/internal/repository"
	"go-entry-board/internal/service"
	"go-entry-board/pkg/apierror"
)

const frontendURL = "http://frontend.test/"

type fakeProvider struct {
	identities map[string]model.Identity
}

func (p fakeProvider) AuthCodeURL(state string) string {
	return "https://discord.test/oauth2/authorize?state=" + url.QueryEscape(state)
}

func (p fakeProvider) Exchange(_ context.Context, code string) (model.Identity, error) {
	ident, ok := p.identities[code]
	if !ok {
		return model.Identity{}, apierror.Upstream("discord token exchange failed")
	}
	return ident, nil
}

type testServer struct {
	handler   http.Handler
	users     *repository.MemoryUserRepository
	whitelist *repository.MemoryWhitelistRepository
	entries   *repository.MemoryEntryRepository
}

func newTestServer(t *testing.T, health HealthCheck) *testServer {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		CORSOrigins:      []string{"http://frontend.test"},
		RateLimitRPM:     -1,
		AuthRateLimitRPM: 1000,
	}

	provider := fakeProvider{identities: map[string]model.Identity{
		"alice-code": {ID: "1001", Username: "alice", Avatar: "a1"},
		"bob-code":   {ID: "1002", Username: "bob", Avatar: "b1"},
		"root-code":  {ID: "9000", Username: "root", Avatar: "r1"},
	}}

	ts := &testServer{
		users:     repository.NewMemoryUserRepository(),
		whitelist: repository.NewMemoryWhitelistRepository(),
		entries:   repository.NewMemoryEntryRepository(),
	}
	profiles := cache.NewMemory(time.Minute)
	bus := event.NewBus()

	tokens, err := service.NewTokenService("router-test-secret", service.DefaultTokenTTL)
	require.NoError(t, err)

	authService := service.NewAuthService(provider, ts.users, ts.whitelist, tokens, profiles, []string{"9000"}, bus)
	userService := service.NewUserService(ts.users, profiles)
	store := sessions.NewCookieStore([]byte("router-test-session-secret-0123"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.handler = New(cfg, logger, middleware.NewAuthMiddleware(authService), Handlers{
		Auth:      handler.NewAuthHandler(authService, store, frontendURL, false),
		Entry:     handler.NewEntryHandler(service.NewEntryService(ts.entries, bus)),
		Whitelist: handler.NewWhitelistHandler(service.NewWhitelistService(ts.whitelist, bus)),
		Feed:      handler.NewFeedHandler(service.NewFeedService(ts.entries, userService)),
		User:      handler.NewUserHandler(userService),
	}, health)

	_ = ts.whitelist.Create(context.Background(), model.WhitelistEntry{ID: "w-alice", Username: "alice", AddedAt: time.Now().UTC()})
	return ts
}

func (ts *testServer) do(t *testing.T, method string, path string, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
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
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// login walks the redirect and callback and returns the callback response.
func (ts *testServer) login(t *testing.T, code string) *httptest.ResponseRecorder {
	t.Helper()

	start := ts.do(t, http.MethodGet, "/auth/discord", "", nil)
	require.Equal(t, http.StatusFound, start.Code)

	location, err := url.Parse(start.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	path := "/auth/discord/callback?code=" + url.QueryEscape(code) + "&state=" + url.QueryEscape(state)
	return ts.do(t, http.MethodGet, path, "", nil, start.Result().Cookies()...)
}

func (ts *testServer) loginToken(t *testing.T, code string) string {
	t.Helper()

	rec := ts.login(t, code)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	require.Equal(t, frontendURL, rec.Header().Get("Location"))

	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			require.NotEmpty(t, c.Value)
			return c.Value
		}
	}
	t.Fatalf("no %s cookie set", middleware.SessionCookieName)
	return ""
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.True(t, resp.Success)
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	down := newTestServer(t, func(context.Context) error { return errors.New("db down") })
	rec = down.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLoginWhitelistScenario(t *testing.T) {
	ts := newTestServer(t, nil)

	token := ts.loginToken(t, "alice-code")
	assert.Equal(t, 1, ts.users.Count())

	me := ts.do(t, http.MethodGet, "/auth/me", "", nil, &http.Cookie{Name: middleware.SessionCookieName, Value: token})
	require.Equal(t, http.StatusOK, me.Code)
	var claims model.AuthClaims
	decodeData(t, me, &claims)
	assert.Equal(t, "1001", claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	rejected := ts.login(t, "bob-code")
	require.Equal(t, http.StatusForbidden, rejected.Code)
	assert.Equal(t, apierror.CodeNotWhitelist, decode(t, rejected).Error.Code)
	for _, c := range rejected.Result().Cookies() {
		assert.NotEqual(t, middleware.SessionCookieName, c.Name)
	}
	assert.Equal(t, 1, ts.users.Count())
}

func TestCallbackRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/auth/discord/callback", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/auth/discord/callback?code=alice-code&state=forged", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "state", decode(t, rec).Error.Details)

	rec = ts.login(t, "unknown-code")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apierror.CodeUpstream, decode(t, rec).Error.Code)
	assert.Equal(t, 0, ts.users.Count())
}

func TestCreateEntryIgnoresClientAuthor(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.loginToken(t, "alice-code")

	rec := ts.do(t, http.MethodPost, "/api/entries", token, map[string]any{
		"entry":      "x",
		"type":       "word",
		"categories": []string{"a"},
		"variation":  []string{},
		"author":     "mallory",
		"authorId":   "666",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.CreateEntryResponse
	decodeData(t, rec, &created)
	assert.Equal(t, "Entry created", created.Message)
	require.NotEmpty(t, created.EntryID)

	list := ts.do(t, http.MethodGet, "/api/entries", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var entries []model.Entry
	decodeData(t, list, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, created.EntryID, entries[0].ID)
	assert.Equal(t, "alice", entries[0].Author)
	assert.Equal(t, "1001", entries[0].AuthorID)
	assert.Equal(t, "x", entries[0].Entry)
	assert.Equal(t, []string{"a"}, entries[0].Categories)
	assert.Equal(t, []string{}, entries[0].Variation)
}

func TestCreateEntryValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.loginToken(t, "alice-code")

	bodies := []map[string]any{
		{"type": "word", "categories": []string{"a"}, "variation": []string{}},
		{"entry": "x", "categories": []string{"a"}, "variation": []string{}},
		{"entry": "x", "type": "word", "variation": []string{}},
		{"entry": "x", "type": "word", "categories": []string{"a"}},
	}
	for _, body := range bodies {
		rec := ts.do(t, http.MethodPost, "/api/entries", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, apierror.CodeValidation, decode(t, rec).Error.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list, err := ts.entries.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEntryRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apierror.CodeMissingToken, decode(t, rec).Error.Code)

	rec = ts.do(t, http.MethodGet, "/api/entries", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apierror.CodeInvalidToken, decode(t, rec).Error.Code)
}

func TestDeleteEntry(t *testing.T) {
	ts := newTestServer(t, nil)
	_ = ts.whitelist.Create(context.Background(), model.WhitelistEntry{ID: "w-bob", Username: "bob", AddedAt: time.Now().UTC()})
	alice := ts.loginToken(t, "alice-code")
	bob := ts.loginToken(t, "bob-code")
	root := ts.loginToken(t, "root-code")

	rec := ts.do(t, http.MethodDelete, "/api/entries/does-not-exist", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/entries", alice, map[string]any{
		"entry": "hello world", "type": "sentence", "categories": []string{"greeting"}, "variation": []string{"hi world"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.CreateEntryResponse
	decodeData(t, rec, &created)

	rec = ts.do(t, http.MethodDelete, "/api/entries/"+created.EntryID, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/entries/"+created.EntryID, root, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/entries/"+created.EntryID, root, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWhitelistRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	alice := ts.loginToken(t, "alice-code")
	root := ts.loginToken(t, "root-code")

	rec := ts.do(t, http.MethodGet, "/api/whitelist", alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/whitelist/bob", root, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/whitelist", root, model.AddWhitelistRequest{Username: "bob"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added model.WhitelistEntry
	decodeData(t, rec, &added)
	assert.Equal(t, "bob", added.Username)
	assert.NotEmpty(t, added.ID)

	rec = ts.do(t, http.MethodPost, "/api/whitelist", root, model.AddWhitelistRequest{Username: "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierror.CodeConflict, decode(t, rec).Error.Code)

	rec = ts.do(t, http.MethodGet, "/api/whitelist", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []model.WhitelistEntry
	decodeData(t, rec, &listed)
	assert.Len(t, listed, 2)

	rec = ts.do(t, http.MethodDelete, "/api/whitelist/bob", root, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeedAndProfiles(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.loginToken(t, "alice-code")

	for _, word := range []string{"one", "two", "three"} {
		rec := ts.do(t, http.MethodPost, "/api/entries", token, map[string]any{
			"entry": word, "type": "word", "categories": []string{"numbers"}, "variation": []string{},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/feed?page=2&limit=2", "", nil, &http.Cookie{Name: middleware.SessionCookieName, Value: token})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, model.Meta{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, *resp.Meta)

	var items []model.FeedItem
	decodeData(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].AuthorAvatar)

	rec = ts.do(t, http.MethodGet, "/api/users/alice", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile model.PublicProfile
	decodeData(t, rec, &profile)
	assert.Equal(t, model.PublicProfile{ID: "1001", Username: "alice", Avatar: "a1"}, profile)

	rec = ts.do(t, http.MethodGet, "/api/users/nobody", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
