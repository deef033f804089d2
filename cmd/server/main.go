package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vincentarsontaneli/data-processor-app/internal/config"
	"github.com/vincentarsontaneli/data-processor-app/internal/core"
	"github.com/vincentarsontaneli/data-processor-app/internal/logging"
	"github.com/vincentarsontaneli/data-processor-app/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	svcCfg, err := core.ConfigFromSettings(cfg)
	if err != nil {
		slog.Error("failed to load inference profile", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"process_max_concurrent", cfg.Process.MaxConcurrent,
		"chunk_size", cfg.Process.ChunkSize,
		"profile", cfg.Inference.Profile,
		"sample_size", svcCfg.Thresholds.SampleSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	service := core.NewService(svcCfg)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Status(); status.Active > 0 {
			slog.Info("waiting for runs to complete", "active", status.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
