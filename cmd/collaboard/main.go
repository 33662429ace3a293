// CollaBoard server — serves the director HTTP API and the live meeting
// WebSocket endpoints, and runs the summarization and export pipelines.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/JBK2116/CollaBoard/pkg/api"
	"github.com/JBK2116/CollaBoard/pkg/cache"
	"github.com/JBK2116/CollaBoard/pkg/cleanup"
	"github.com/JBK2116/CollaBoard/pkg/clock"
	"github.com/JBK2116/CollaBoard/pkg/config"
	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/events"
	"github.com/JBK2116/CollaBoard/pkg/llm"
	"github.com/JBK2116/CollaBoard/pkg/meeting"
	"github.com/JBK2116/CollaBoard/pkg/services"
	"github.com/JBK2116/CollaBoard/pkg/session"
	"github.com/JBK2116/CollaBoard/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupLogging configures the default slog logger from LOG_LEVEL and
// LOG_FORMAT (text or json).
func setupLogging() {
	level := slog.LevelInfo
	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if getEnv("LOG_FORMAT", "text") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	configPath := flag.String("config",
		getEnv("CONFIG_PATH", "./deploy/collaboard.yaml"),
		"Path to the configuration file")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}
	setupLogging()
	gin.SetMode(getEnv("GIN_MODE", gin.ReleaseMode))

	slog.Info("Starting CollaBoard", "version", version.Full(), "config", *configPath)

	// Root context: cancelled on shutdown so live meetings run their end
	// sequences before the process exits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := slog.Default()

	// 1. Configuration
	cfg, err := config.Initialize(ctx, *configPath)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// 2. Database (runs embedded migrations)
	dbClient, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Error closing database client", "error", err)
		}
	}()
	slog.Info("Connected to PostgreSQL database")
	store := database.NewStore(dbClient.DB())

	// 3. Lock-flag cache and session registry
	clk := clock.New()
	flags, err := cache.New(cfg.Cache, clk)
	if err != nil {
		slog.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := flags.Close(); err != nil {
			slog.Error("Error closing cache", "error", err)
		}
	}()

	registry := session.NewRegistry(cfg.Session, cfg.Cache, flags, clk, logger)
	registry.Start(ctx)
	defer registry.Stop()

	// 4. Broker for live meeting fan-out
	broker := events.NewBroker(cfg.Server.SendBuffer, logger)

	// 5. LLM provider
	provider, err := llm.New(cfg.LLM, logger)
	if err != nil {
		slog.Error("Failed to initialize LLM client", "error", err)
		os.Exit(1)
	}

	// 6. Domain services
	authService := services.NewAuthService(store, cfg.Auth, clk)
	meetingService := services.NewMeetingService(store)
	responseService := services.NewResponseService(store)
	summaryService := services.NewSummaryService(store, provider)
	exportService := services.NewExportService(store, cfg.Export, cfg.Server.BaseURL)
	slog.Info("Services initialized")

	// 7. Retention: stale exports and expired login sessions
	cleaner := cleanup.NewService(cfg.Export, authService, clk)
	cleaner.Start(ctx)
	defer cleaner.Stop()

	// 8. Live session engine
	engine := meeting.NewEngine(
		cfg.Server, cfg.Session,
		registry, broker,
		meetingService, responseService, authService,
		clk, logger,
	)

	// 9. HTTP server
	httpServer := api.NewServer(cfg, dbClient, authService, meetingService, summaryService, exportService, engine)
	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(ctx, addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("CollaBoard started successfully", "addr", addr)

	// 10. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 11. Graceful shutdown: cancelling ctx ends live meetings (stats get
	// persisted), then the HTTP server drains.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
