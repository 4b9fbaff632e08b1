package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/takapay/takapay/internal/adapter/http/handler"
	"github.com/takapay/takapay/internal/adapter/http/middleware"
	"github.com/takapay/takapay/internal/infrastructure/metrics"
	"github.com/takapay/takapay/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RequestHandler     *handler.RequestHandler
	AccountHandler     *handler.AccountHandler
	TransferHandler    *handler.TransferHandler
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
	Metrics            *metrics.Metrics

	// Auth injects the authenticated user into the request context.
	Auth func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Money requests
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", cfg.RequestHandler.Create)
			r.Get("/", cfg.RequestHandler.List)
			r.Get("/{id}", cfg.RequestHandler.Get)
			r.Post("/{id}/accept", cfg.RequestHandler.Accept)
			r.Post("/{id}/fulfill", cfg.RequestHandler.Fulfill)
			r.Post("/{id}/verify", cfg.RequestHandler.Verify)
			r.Post("/{id}/cancel", cfg.RequestHandler.Cancel)
		})

		// Wallet transfers
		r.Post("/transfers", cfg.TransferHandler.Create)

		// Accounts and ledger
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
			r.Get("/{id}/replay", cfg.TransactionHandler.Replay)
		})
	})

	return r
}
