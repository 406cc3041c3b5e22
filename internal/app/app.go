package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"

	"go-entry-board/internal/cache"
	"go-entry-board/internal/config"
	"go-entry-board/internal/database"
	"go-entry-board/internal/event"
	"go-entry-board/internal/handler"
	"go-entry-board/internal/identity"
	"go-entry-board/internal/middleware"
	"go-entry-board/internal/repository"
	"go-entry-board/internal/router"
	"go-entry-board/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	var cleanups []func()
	fail := func(err error) (*App, error) {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		return nil, err
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanups = append(cleanups, db.Close)

	if err := db.EnsureSchema(context.Background()); err != nil {
		return fail(fmt.Errorf("failed to ensure database schema: %w", err))
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	whitelistRepo := repository.NewWhitelistRepository(pool)
	entryRepo := repository.NewEntryRepository(pool)
	slog.Info("database ready")

	var profiles cache.ProfileCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to redis: %w", err))
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		profiles = cache.NewRedis(client, cfg.AvatarCacheTTL)
	} else {
		profiles = cache.NewMemory(cfg.AvatarCacheTTL)
		slog.Info("using in-process profile cache", "ttl", cfg.AvatarCacheTTL)
	}

	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize token service: %w", err))
	}

	bus := event.NewBus()
	sinkCtx, sinkCancel := context.WithCancel(context.Background())
	go event.LogSink(sinkCtx, bus, logger.With("component", "events"))
	cleanups = append(cleanups, sinkCancel)

	provider := identity.NewDiscord(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.CallbackURL(), cfg.DiscordAPIBase)
	authService := service.NewAuthService(provider, userRepo, whitelistRepo, tokens, profiles, cfg.AdminIDs, bus)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	userService := service.NewUserService(userRepo, profiles)
	entryService := service.NewEntryService(entryRepo, bus)
	whitelistService := service.NewWhitelistService(whitelistRepo, bus)
	feedService := service.NewFeedService(entryRepo, userService)

	stateStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	appRouter := router.New(cfg, logger, authMiddleware, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, stateStore, cfg.FrontendURL, cfg.SecureCookies()),
		Entry:     handler.NewEntryHandler(entryService),
		Whitelist: handler.NewWhitelistHandler(whitelistService),
		Feed:      handler.NewFeedHandler(feedService),
		User:      handler.NewUserHandler(userService),
	}, db.Health)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: cleanups,
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// Stores close after in-flight requests drain.
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
