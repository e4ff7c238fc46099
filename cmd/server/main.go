package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/callboard/internal/server/handlers"
	"github.com/iudanet/callboard/internal/server/middleware"
	"github.com/iudanet/callboard/internal/server/realtime"
	"github.com/iudanet/callboard/internal/server/storage/sqlite"
	"github.com/iudanet/callboard/internal/server/token"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	shutdownTimeout = 10 * time.Second

	// лимит обмена токенов: защита от перебора service key
	tokenRate   = 10
	tokenWindow = time.Minute
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "callboard.db", "Path to SQLite database")
	jwtSecret := flag.String("jwt-secret", "", "JWT signing secret (random if empty)")
	tokenTTL := flag.Duration("token-ttl", time.Hour, "Access token lifetime")
	adminKey := flag.String("admin-key", "", "Service key for global admin scope (disabled if empty)")
	seedKey := flag.String("seed", "", "Seed demo tenants with this service key on startup")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := run(logger, *addr, *dbPath, *jwtSecret, *adminKey, *seedKey, *tokenTTL); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath, jwtSecret, adminKey, seedKey string, tokenTTL time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	if seedKey != "" {
		if err := store.SeedDemo(ctx, seedKey); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		logger.Info("Demo tenants seeded")
	}

	if jwtSecret == "" {
		jwtSecret = randomSecret()
		logger.Warn("Using random JWT secret, tokens won't survive restart")
	}
	manager := token.NewManager(jwtSecret, tokenTTL)

	adminKeyHash := ""
	if adminKey != "" {
		adminKeyHash, err = token.HashServiceKey(adminKey)
		if err != nil {
			return fmt.Errorf("failed to hash admin key: %w", err)
		}
	}

	hub := realtime.NewHub(logger)
	defer hub.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	tokenHandler := handlers.NewTokenHandler(logger, store, manager, adminKeyHash)
	resourceHandler := handlers.NewResourceHandler(logger, store, hub)
	subscribeHandler := handlers.NewSubscribeHandler(logger, store, hub)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	auth := middleware.AuthMiddleware(logger, manager)
	tokenLimit := middleware.RateLimitMiddleware(tokenRate, tokenWindow, logger)

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/token", tokenLimit(http.HandlerFunc(tokenHandler.Exchange)))
	mux.Handle("GET /api/v1/subscribe", auth(http.HandlerFunc(subscribeHandler.Subscribe)))
	mux.Handle("GET /api/v1/{resource}", auth(http.HandlerFunc(resourceHandler.List)))
	mux.Handle("POST /api/v1/{resource}", auth(http.HandlerFunc(resourceHandler.Create)))
	mux.Handle("PATCH /api/v1/{resource}/{id}", auth(http.HandlerFunc(resourceHandler.Update)))
	mux.Handle("DELETE /api/v1/{resource}/{id}", auth(http.HandlerFunc(resourceHandler.Delete)))
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	handler := middleware.RecoveryMiddleware(logger)(
		middleware.LoggingWithSkip(logger, []string{"/healthz", "/metrics"})(
			middleware.MetricsMiddleware(metrics)(mux)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// randomSecret генерирует случайный секрет для dev-запуска без конфига
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand не падает на живой системе
	}
	return hex.EncodeToString(buf)
}

func printVersion() {
	fmt.Printf("Callboard Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
