package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ectormgl/SQLTranslator/internal/app"
	"github.com/ectormgl/SQLTranslator/internal/cli"
	"github.com/ectormgl/SQLTranslator/internal/config"
	"github.com/ectormgl/SQLTranslator/internal/observability"
	"github.com/ectormgl/SQLTranslator/internal/session"
)

func main() {
	cfg, err := config.LoadFromEnv("sqltranslator")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	// Chat output owns stdout. Logs go to stderr below the chat, warnings and up.
	logCfg := cfg
	if logCfg.Observability.LogLevel < slog.LevelWarn {
		logCfg.Observability.LogLevel = slog.LevelWarn
	}
	logger, closeLog, err := observability.NewLoggerWithFile(logCfg, os.Stderr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], cli.Options{
		Database: cfg.Database,
		NewManager: func() (*session.Manager, error) {
			return app.NewManager(ctx, cfg, logger)
		},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	stop()
	_ = closeLog()
	os.Exit(code)
}
