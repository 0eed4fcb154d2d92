package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"searchuser-api/internal/account/service"
	"searchuser-api/internal/audit"
	auditrepo "searchuser-api/internal/audit/repository"
	"searchuser-api/internal/config"
	"searchuser-api/internal/db"
	"searchuser-api/internal/logging"
	"searchuser-api/internal/metrics"
	"searchuser-api/internal/security"
	"searchuser-api/internal/server"
	"searchuser-api/internal/server/middleware"
	userrepo "searchuser-api/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.SetupDefault(os.Stdout, cfg.Env)

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := userrepo.NewPostgresRepository(conn)
	auditLogs := auditrepo.NewPostgresRepository(conn)
	auditLog := audit.NewLogger(auditLogs, middleware.GetClientIP)
	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenProvider([]byte(cfg.JWTKey), cfg.JWTIssuer, cfg.ExpireWindow())
	accounts := service.NewService(users, hasher, tokens, cfg.ExpireWindow(), auditLog)

	loginLimiter := middleware.NewRateLimiter(
		middleware.LoginRateLimiterConfig(cfg.LoginRatePerMin, cfg.LoginBurst))
	defer loginLimiter.Stop()

	router := server.NewRouter(&server.Deps{
		Account:      accounts,
		Tokens:       tokens,
		Metrics:      metrics.NewCollector(),
		Logger:       logger,
		Audit:        auditLogs,
		LoginLimiter: loginLimiter,
		DB:           conn,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
