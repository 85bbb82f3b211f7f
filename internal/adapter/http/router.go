package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/depositcore/internal/adapter/http/handler"
	"github.com/iho/depositcore/internal/adapter/http/middleware"
	"github.com/iho/depositcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	PostingHandler   *handler.PostingHandler
	InterestHandler  *handler.InterestHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Open)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/close", cfg.AccountHandler.Close)
			r.Get("/{id}/balances", cfg.AccountHandler.GetBalances)
			r.Get("/{id}/events", cfg.AccountHandler.ListEvents)

			// Posting batches
			r.Post("/{id}/batches", cfg.PostingHandler.Submit)

			// Interest lifecycle
			r.Post("/{id}/accruals", cfg.InterestHandler.RunAccrual)
			r.Post("/{id}/applications", cfg.InterestHandler.RunApplication)
			r.Get("/{id}/schedule", cfg.InterestHandler.GetSchedule)
			r.Put("/{id}/schedule", cfg.InterestHandler.ChangeSchedule)
		})

		// Batches
		r.Get("/batches/{batchID}", cfg.PostingHandler.GetBatch)
	})

	return r
}
