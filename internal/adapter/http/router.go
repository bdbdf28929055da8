package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gofinance/internal/adapter/http/handler"
	"github.com/iho/gofinance/internal/adapter/http/middleware"
	"github.com/iho/gofinance/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	GoalHandler      *handler.GoalHandler
	BudgetHandler    *handler.BudgetHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	// Logger enables access logging when set.
	Logger *zerolog.Logger
	// MetricsHandler serves /metrics; defaults to the prometheus default registry.
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireUserID)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Goals
		r.Route("/goals", func(r chi.Router) {
			r.Post("/", cfg.GoalHandler.Create)
			r.Get("/", cfg.GoalHandler.List)
			r.Get("/{id}", cfg.GoalHandler.Get)
			r.Patch("/{id}", cfg.GoalHandler.Update)
			r.Delete("/{id}", cfg.GoalHandler.Delete)
			r.Post("/{id}/contributions", cfg.GoalHandler.Contribute)
			r.Post("/{id}/withdrawals", cfg.GoalHandler.Withdraw)
			r.Get("/{id}/entries", cfg.GoalHandler.ListEntries)
			r.Get("/{id}/events", cfg.GoalHandler.ListEvents)
			r.Patch("/{id}/entries/{entryID}", cfg.GoalHandler.CorrectEntry)
			r.Delete("/{id}/entries/{entryID}", cfg.GoalHandler.RemoveEntry)
		})

		// Budgets
		r.Get("/budgets/{id}/spending", cfg.BudgetHandler.Spending)
	})

	return r
}
