package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-entry-board/internal/config"
	"go-entry-board/internal/handler"
	"go-entry-board/internal/middleware"
	"go-entry-board/internal/model"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Entry     *handler.EntryHandler
	Whitelist *handler.WhitelistHandler
	Feed      *handler.FeedHandler
	User      *handler.UserHandler
}

// HealthCheck reports whether a backing dependency is reachable. Nil checks
// are skipped.
type HealthCheck func(ctx context.Context) error

func New(
	cfg *config.Config,
	logger *slog.Logger,
	authMiddleware *middleware.AuthMiddleware,
	h Handlers,
	health HealthCheck,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UNAVAILABLE","message":"dependency unavailable"}}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/auth", func(auth chi.Router) {
		auth.Use(middleware.Timeout(cfg.RequestTimeout))

		auth.Get("/discord", h.Auth.DiscordRedirect)
		auth.Get("/discord/callback", h.Auth.DiscordCallback)
		auth.With(authMiddleware.RequireSession).Get("/me", h.Auth.Me)
		auth.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.With(authMiddleware.RequireAuth).Post("/entries", h.Entry.Create)
		api.With(authMiddleware.RequireAuth).Get("/entries", h.Entry.List)
		api.With(authMiddleware.RequireAuth).Delete("/entries/{id}", h.Entry.Delete)
		api.With(authMiddleware.RequireSession).Get("/feed", h.Feed.Page)
		api.With(authMiddleware.RequireAuth).Get("/users/{username}", h.User.Profile)

		api.Route("/whitelist", func(wl chi.Router) {
			wl.Use(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin))

			wl.Post("/", h.Whitelist.Add)
			wl.Get("/", h.Whitelist.List)
			wl.Delete("/{username}", h.Whitelist.Remove)
		})
	})

	return r
}
