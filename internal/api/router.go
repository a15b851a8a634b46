package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"verdict-lab/internal/api/handlers"
	apimiddleware "verdict-lab/internal/api/middleware"
	"verdict-lab/internal/config"
	"verdict-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	limiter  apimiddleware.RateLimitStore
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. limiter may be nil, in which case
// rate limiting is skipped even when enabled.
func NewRouter(cfg config.Config, h *handlers.Handlers, limiter apimiddleware.RateLimitStore, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		limiter:  limiter,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	if r.config.Server.RequestTimeout > 0 {
		router.Use(middleware.Timeout(r.config.Server.RequestTimeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Public routes
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	// API v1 routes (authenticated)
	router.Route("/api/v1", func(api chi.Router) {
		if r.config.Auth.Enabled {
			api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKeys))
		}
		if r.config.RateLimit.Enabled && r.limiter != nil {
			api.Use(apimiddleware.RateLimiter(r.limiter, r.config.RateLimit, r.logger))
		}

		api.Post("/analyze", r.handlers.Analysis.Analyze)

		api.Route("/sources", func(sources chi.Router) {
			sources.Get("/", r.handlers.Sources.List)
			sources.Get("/{slug}", r.handlers.Sources.Get)
		})

		api.Get("/correlation/stats", r.handlers.Correlation.Stats)
	})

	return router
}
