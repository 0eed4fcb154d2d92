// Package server assembles the HTTP router and middleware chain.
package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"searchuser-api/internal/account/handler"
	"searchuser-api/internal/metrics"
	"searchuser-api/internal/security"
	"searchuser-api/internal/server/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var _ Pinger = (*sql.DB)(nil)

// Deps carries everything the router needs.
type Deps struct {
	Account handler.AccountService
	Tokens  *security.TokenProvider
	Metrics *metrics.Collector
	Logger  *slog.Logger

	// Audit backs the account history endpoint. Optional; nil disables it.
	Audit handler.AuditReader

	// LoginLimiter throttles the credential endpoints per client IP.
	// Optional; nil disables throttling.
	LoginLimiter *middleware.RateLimiter

	// DB is probed by /healthz. Optional.
	DB Pinger
}

// NewRouter wires all endpoints behind the shared middleware stack.
//
// Order: Recovery catches panics from everything below it, ClientIP runs
// before Logging so request lines carry the caller address, and metrics
// observe the final status of every route.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.Recovery())
	r.Use(middleware.ClientIP())
	r.Use(middleware.Logging(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	var accountMetrics handler.Metrics
	if deps.Metrics != nil {
		accountMetrics = deps.Metrics
	}
	accountHandler := handler.NewHandler(deps.Account, accountMetrics, deps.Audit)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if deps.LoginLimiter != nil {
				r.Use(deps.LoginLimiter.Middleware())
			}
			r.Post("/signin", accountHandler.Signin)
			r.Post("/signup", accountHandler.Signup)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Tokens))
			r.Get("/finduser/{id}", accountHandler.FindUser)
			if deps.Audit != nil {
				r.Get("/finduser/{id}/history", accountHandler.History)
			}
		})
	})

	r.Get("/healthz", healthHandler(deps.DB))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.Error("write health response", slog.String("error", err.Error()))
		}
	}
}
