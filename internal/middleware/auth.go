package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

// SessionCookieName is the cookie set by the login callback for page reads.
const SessionCookieName = "token"

type tokenValidator interface {
	ValidateToken(tokenString string) (*model.AuthClaims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	validator tokenValidator
}

func NewAuthMiddleware(validator tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth accepts only an Authorization: Bearer header.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.authenticate(next, false)
}

// RequireSession accepts the session cookie and falls back to the bearer
// header.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return m.authenticate(next, true)
}

func (m *AuthMiddleware) authenticate(next http.Handler, allowCookie bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if allowCookie {
			token = cookieToken(r)
		}
		if token == "" {
			token = bearerToken(r)
		}
		if token == "" {
			writeAuthError(w, apierror.MissingToken())
			return
		}

		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			var apiErr *apierror.APIError
			if !errors.As(err, &apiErr) {
				apiErr = apierror.InvalidToken()
			}
			writeAuthError(w, apiErr)
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, apierror.MissingToken())
				return
			}

			for _, role := range claims.Roles {
				if _, exists := roleSet[strings.ToLower(role)]; exists {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthError(w, apierror.Forbidden("insufficient permissions"))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok && claims != nil
}

// WithClaims stores claims the way RequireAuth does. Handler tests use it to
// skip token signing.
func WithClaims(ctx context.Context, claims *model.AuthClaims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func cookieToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func writeAuthError(w http.ResponseWriter, apiErr *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}
