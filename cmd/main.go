package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukepan/linkpulse/internal/analytics"
	"github.com/dukepan/linkpulse/internal/api"
	"github.com/dukepan/linkpulse/internal/cache"
	"github.com/dukepan/linkpulse/internal/config"
	"github.com/dukepan/linkpulse/internal/db"
	"github.com/dukepan/linkpulse/internal/events"
	"github.com/dukepan/linkpulse/internal/linkcheck"
	"github.com/dukepan/linkpulse/internal/observability"
	"github.com/dukepan/linkpulse/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize OpenTelemetry. Must happen before the server starts so
	// the middleware sees the final tracer and propagator configuration.
	otelCleanup, err := observability.InitOpenTelemetry("linkpulse", "1.0.0")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}

	// Initialize structured logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal(context.Background(), "Failed to initialize database: %v", err)
	}

	// Initialize cache (Redis)
	redisCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		logger.Fatal(context.Background(), "Failed to initialize cache: %v", err)
	}

	// Live click feed hub
	hub := events.NewHub(redisCache, logger)
	hub.Start(context.Background())

	// Click analytics aggregator
	aggregator := analytics.NewAggregator(database, redisCache, logger, cfg.FlushInterval, cfg.ClickRetention)
	aggregator.Start(context.Background())

	// Outbound link reachability checker
	checker := linkcheck.NewChecker(cfg.LinkCheckTimeout)

	// Setup HTTP router
	router := api.NewRouter(database, redisCache, hub, aggregator, checker, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info(context.Background(), "Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(context.Background(), "Server error: %v", err)
		}
	}()

	// Graceful shutdown setup
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Block until a signal is received
	<-sigChan

	gracefulShutdown(context.Background(), logger, server, database, redisCache, hub, aggregator, otelCleanup)

	logger.Info(context.Background(), "Application stopped.")
}

// gracefulShutdown handles the graceful shutdown of all components
func gracefulShutdown(ctx context.Context, logger *utils.Logger, server *http.Server, database *db.Database, redisCache *cache.Cache, hub *events.Hub, aggregator *analytics.Aggregator, otelCleanup func(context.Context) error) {
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// 1. Shut down HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error: %v", err)
	} else {
		logger.Info(ctx, "HTTP server stopped.")
	}

	// 2. Stop the websocket hub (closes client connections)
	hub.Stop()
	logger.Info(ctx, "Event hub stopped.")

	// 3. Stop the aggregator (flushes pending click data)
	aggregator.Stop()
	logger.Info(ctx, "Analytics aggregator stopped.")

	// 4. Close Database connection
	if err := database.Close(); err != nil {
		logger.Error(ctx, "Database close error: %v", err)
	} else {
		logger.Info(ctx, "Database connection closed.")
	}

	// 5. Close Redis cache connection
	if err := redisCache.Close(); err != nil {
		logger.Error(ctx, "Redis cache close error: %v", err)
	} else {
		logger.Info(ctx, "Redis cache connection closed.")
	}

	// 6. Shutdown OpenTelemetry
	if otelCleanup != nil {
		if err := otelCleanup(shutdownCtx); err != nil {
			logger.Error(ctx, "OpenTelemetry shutdown error: %v", err)
		} else {
			logger.Info(ctx, "OpenTelemetry shut down.")
		}
	}

	logger.Info(ctx, "Graceful shutdown complete.")
}
