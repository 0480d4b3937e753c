package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wepick/internal/auth"
	"wepick/internal/catalog"
	"wepick/internal/config"
	transporthttp "wepick/internal/http"
	"wepick/internal/platform/database"
	"wepick/internal/platform/logging"
	"wepick/internal/platform/migrate"
	"wepick/internal/recommend"
	"wepick/internal/sessions"
)

const loginPurgeInterval = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	repos, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if cfg.TMDBAPIKey == "" && cfg.TMDBAccessToken == "" {
		logger.Warn("TMDB_API_KEY is not set; movie and series searches will return nothing")
	}

	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}
	tmdb := catalog.NewTMDB(providerClient, logger,
		catalog.WithTMDBBaseURL(cfg.TMDBBaseURL),
		catalog.WithTMDBAPIKey(cfg.TMDBAPIKey),
		catalog.WithTMDBAccessToken(cfg.TMDBAccessToken),
	)
	jikan := catalog.NewJikan(providerClient, logger, catalog.WithJikanBaseURL(cfg.JikanBaseURL))

	resolver := recommend.NewResolver(tmdb, jikan, recommend.WithLogger(logger))
	sessionSvc := sessions.NewService(repos.sessions, resolver)

	services := transporthttp.Services{
		Sessions: sessionSvc,
		Resolver: resolver,
	}

	if cfg.OAuthEnabled() {
		google, err := auth.NewGoogleAuthenticator(ctx, auth.GoogleConfig{
			ClientID:       cfg.GoogleClientID,
			ClientSecret:   cfg.GoogleClientSecret,
			RedirectURL:    cfg.GoogleRedirectURL,
			AllowedDomains: cfg.GoogleAllowedDomains,
			AllowedEmails:  cfg.GoogleAllowedEmails,
		})
		if err != nil {
			logger.Error("failed to initialize Google sign-in", "error", err)
			os.Exit(1)
		}
		if !google.HasAllowlist() {
			logger.Warn("Google sign-in has no allowlist; any verified account may sign in")
		}

		authSvc := auth.NewService(repos.viewers, 0)
		services.Auth = authSvc
		services.Google = google
		go purgeExpiredLogins(ctx, authSvc, logger)
	}

	router := transporthttp.NewRouter(cfg, services, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("WePick API listening", "addr", srv.Addr, "store", cfg.DataStore, "auth", cfg.OAuthEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

type repositories struct {
	sessions sessions.Repository
	viewers  auth.Repository
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory repositories")
		return repositories{
			sessions: sessions.NewInMemoryRepository(),
			viewers:  auth.NewInMemoryRepository(),
		}, nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	version, err := migrate.Apply(ctx, db, logger)
	if err != nil {
		cleanup()
		return repositories{}, nil, err
	}

	logger.Info("connected to postgres", "schema_version", version)
	return repositories{
		sessions: sessions.NewPostgresRepository(db),
		viewers:  auth.NewPostgresRepository(db),
	}, cleanup, nil
}

func purgeExpiredLogins(ctx context.Context, authSvc *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(loginPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := authSvc.PurgeExpired(ctx)
			if err != nil {
				logger.Error("failed to purge expired logins", "error", err)
				continue
			}
			if count > 0 {
				logger.Info("purged expired logins", "count", count)
			}
		}
	}
}
