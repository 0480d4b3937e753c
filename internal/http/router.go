package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"wepick/internal/auth"
	"wepick/internal/config"
	"wepick/internal/metrics"
	"wepick/internal/sessions"
)

// Services bundles what the router dispatches to. Auth and Google may be nil
// when sign-in is not configured.
type Services struct {
	Sessions *sessions.Service
	Resolver resolver
	Auth     *auth.Service
	Google   googleAuthenticator
}

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, svc Services, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	authEnabled := svc.Auth != nil && svc.Google != nil
	if !authEnabled {
		logger.Warn("Google sign-in disabled; sessions are anonymous")
	}

	catalogHandler := NewCatalogHandler()
	sessionHandler := NewSessionHandler(svc.Sessions, logger)
	recommendationHandler := NewRecommendationHandler(svc.Resolver, logger)

	// Every recommendation fans out to rate-limited providers.
	recommendLimit := httprate.Limit(
		cfg.RecommendRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "too many recommendation requests")
		}),
	)

	r.Route("/api", func(r chi.Router) {
		if authEnabled {
			r.Use(newViewerMiddleware(svc.Auth, logger))

			oauthHandler := NewOAuthHandler(svc.Google, svc.Auth, cfg.FrontendURL, cfg.Environment, logger)
			r.Route("/auth", func(r chi.Router) {
				r.Get("/google", oauthHandler.InitiateGoogle)
				r.Get("/google/callback", oauthHandler.CallbackGoogle)
				r.Get("/me", oauthHandler.Me)
				r.With(requireViewer).Post("/logout", oauthHandler.Logout)
			})
		}

		r.Get("/genres", catalogHandler.Genres)
		r.Get("/characters", catalogHandler.Characters)

		r.With(recommendLimit).Post("/recommendations", recommendationHandler.Recommend)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Put("/language", sessionHandler.SetLanguage)
				r.Put("/content-type", sessionHandler.SetContentType)
				r.Post("/friend", sessionHandler.InviteFriend)
				r.Post("/character", sessionHandler.ChooseCharacter)
				r.Put("/participants/{index}/preferences", sessionHandler.SavePreferences)
				r.Post("/reset", sessionHandler.Reset)
				r.With(recommendLimit).Post("/recommendations", sessionHandler.Recommend)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}
