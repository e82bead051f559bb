package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ectormgl/SQLTranslator/internal/config"
	"github.com/ectormgl/SQLTranslator/internal/dsn"
	"github.com/ectormgl/SQLTranslator/internal/observability"
	"github.com/ectormgl/SQLTranslator/internal/session"
)

type ReadinessCheck func(ctx context.Context) error

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
	Sessions          *session.Manager
}

type dialectInfo struct {
	Dialect     dsn.Dialect `json:"dialect"`
	DisplayName string      `json:"display_name"`
	DefaultPort int         `json:"default_port,omitempty"`
	Placeholder string      `json:"uri_placeholder"`
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/dialects", func(w http.ResponseWriter, _ *http.Request) {
		dialects := dsn.Dialects()
		out := make([]dialectInfo, 0, len(dialects))
		for _, dialect := range dialects {
			out = append(out, dialectInfo{
				Dialect:     dialect,
				DisplayName: dialect.DisplayName(),
				DefaultPort: dialect.DefaultPort(),
				Placeholder: dialect.Placeholder(),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"dialects": out})
	})

	sessions := &sessionHandlers{manager: deps.Sessions}
	mux.HandleFunc("GET /v1/sessions", sessions.list)
	mux.HandleFunc("POST /v1/sessions", sessions.create)
	mux.HandleFunc("GET /v1/sessions/{id}", sessions.get)
	mux.HandleFunc("DELETE /v1/sessions/{id}", sessions.delete)
	mux.HandleFunc("POST /v1/sessions/{id}/connect", sessions.connect)
	mux.HandleFunc("GET /v1/sessions/{id}/schema", sessions.schema)
	mux.HandleFunc("POST /v1/sessions/{id}/ask", sessions.ask)
	mux.HandleFunc("GET /v1/sessions/{id}/exports/{turn}", sessions.download)

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CheckAIConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.AI.Provider == "" {
			return errors.New("ai provider is not configured")
		}
		return nil
	}
}

func CheckObjectStoreConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if !cfg.Export.Enabled {
			return nil
		}
		if cfg.Export.ObjectStore.Endpoint == "" {
			return errors.New("object store endpoint is not configured")
		}
		if cfg.Export.ObjectStore.Bucket == "" {
			return errors.New("object store bucket is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
