package observability

import (
	"context"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"

	"github.com/ectormgl/SQLTranslator/internal/config"
)

type ctxKey string

const traceIDKey ctxKey = "trace_id"

func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	return newLogger(cfg, newHandler(cfg, writer))
}

// NewLoggerWithFile writes to writer and additionally appends JSON records to
// cfg.Observability.LogFile when one is configured. The returned func closes
// the file.
func NewLoggerWithFile(cfg config.Config, writer io.Writer) (*slog.Logger, func() error, error) {
	primary := newHandler(cfg, writer)
	if cfg.Observability.LogFile == "" {
		return newLogger(cfg, primary), func() error { return nil }, nil
	}
	file, err := os.OpenFile(cfg.Observability.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	return newLogger(cfg, slogmulti.Fanout(primary, fileHandler)), file.Close, nil
}

func newHandler(cfg config.Config, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = io.Discard
	}
	if cfg.Observability.LogJSON {
		return slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	}
	return slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
}

func newLogger(cfg config.Config, handler slog.Handler) *slog.Logger {
	return slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("profile", string(cfg.Profile)),
	)
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	value, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return ""
	}
	return value
}
