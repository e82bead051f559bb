package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ectormgl/SQLTranslator/internal/api"
	"github.com/ectormgl/SQLTranslator/internal/app"
	"github.com/ectormgl/SQLTranslator/internal/config"
	"github.com/ectormgl/SQLTranslator/internal/observability"
)

func main() {
	cfg, err := config.LoadFromEnv("sqltranslator-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger, closeLog, err := observability.NewLoggerWithFile(cfg, os.Stdout)
	if err != nil {
		slog.Error("failed to open log file", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	manager, err := app.NewManager(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sessions", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = manager.Close() }()

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger:   logger,
		Sessions: manager,
		Readiness: api.CombineReadinessChecks(
			api.CheckAIConfig(cfg),
			api.CheckObjectStoreConfig(cfg),
		),
		DependencyTimeout: time.Second,
	})
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address), slog.String("ai_provider", cfg.AI.Provider), slog.Bool("export", cfg.Export.Enabled))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
