package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"polkafetch/internal/config"
	"polkafetch/internal/core"
	"polkafetch/internal/logging"
	"polkafetch/internal/subscan"
	"polkafetch/internal/telemetry"
	"polkafetch/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"explorer_base_url", cfg.Fetch.BaseURL,
		"max_concurrent_jobs", cfg.Fetch.MaxConcurrentJobs,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Tracing (noop provider when no endpoint is configured)
	ctx := context.Background()
	shutdownTracer, err := telemetry.InitTracer(ctx, "polkafetch", cfg.Trace.Endpoint)
	if err != nil {
		slog.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}

	// Explorer API client
	client, err := subscan.NewClient(subscan.Config{
		BaseURL:  cfg.Fetch.BaseURL,
		APIKey:   cfg.Fetch.APIKey,
		Timeout:  cfg.Fetch.HTTPTimeout,
		CacheTTL: cfg.Fetch.CacheTTL,
	})
	if err != nil {
		slog.Error("failed to create explorer client", "error", err)
		os.Exit(1)
	}

	service := core.NewService(client, cfg)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for running fetch jobs to finish (with timeout)
		status := service.JobLimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for fetch jobs to complete", "active", status.Active)
			if err := service.WaitForJobs(shutdownCtx); err != nil {
				slog.Warn("fetch jobs did not complete in time", "error", err)
			} else {
				slog.Info("all fetch jobs completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
