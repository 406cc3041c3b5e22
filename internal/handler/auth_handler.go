package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"go-entry-board/internal/middleware"
	"go-entry-board/internal/service"
	"go-entry-board/pkg/apierror"
)

const (
	oauthSessionName = "oauth_state"
	oauthStateKey    = "state"
	oauthStateMaxAge = 10 * 60
)

type AuthHandler struct {
	service     *service.AuthService
	sessions    sessions.Store
	frontendURL string
	secure      bool
}

func NewAuthHandler(service *service.AuthService, store sessions.Store, frontendURL string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		service:     service,
		sessions:    store,
		frontendURL: frontendURL,
		secure:      secureCookies,
	}
}

// DiscordRedirect stores a fresh state value in a short-lived session cookie
// and sends the browser to the provider.
func (h *AuthHandler) DiscordRedirect(w http.ResponseWriter, r *http.Request) {
	// A stale or tampered cookie yields a new empty session, which is fine here.
	session, _ := h.sessions.Get(r, oauthSessionName)
	state := uuid.NewString()
	session.Values[oauthStateKey] = state
	session.Options = h.stateOptions(oauthStateMaxAge)

	if err := session.Save(r, w); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, h.service.AuthCodeURL(state), http.StatusFound)
}

func (h *AuthHandler) DiscordCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	code := strings.TrimSpace(query.Get("code"))
	if code == "" {
		writeError(w, apierror.Validation("authorization code is required", "code"))
		return
	}

	session, _ := h.sessions.Get(r, oauthSessionName)
	expected, _ := session.Values[oauthStateKey].(string)
	got := query.Get("state")

	delete(session.Values, oauthStateKey)
	session.Options = h.stateOptions(-1)
	if err := session.Save(r, w); err != nil {
		slog.Warn("failed to clear oauth state", "error", err)
	}

	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		writeError(w, apierror.Validation("invalid oauth state", "state"))
		return
	}

	result, err := h.service.Login(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		MaxAge:   int(time.Until(result.ExpiresAt).Seconds()),
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("user logged in", "user_id", result.User.ID, "username", result.User.Username, "created", result.Created)
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.MissingToken())
		return
	}

	writeSuccess(w, http.StatusOK, claims, nil)
}

// Logout clears the session cookie. Tokens are stateless, so an already
// copied bearer token stays valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}

func (h *AuthHandler) stateOptions(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
