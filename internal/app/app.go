// Package app assembles the session manager shared by the API server and the
// terminal chat.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ectormgl/SQLTranslator/internal/config"
	"github.com/ectormgl/SQLTranslator/internal/database"
	"github.com/ectormgl/SQLTranslator/internal/dsn"
	"github.com/ectormgl/SQLTranslator/internal/export"
	"github.com/ectormgl/SQLTranslator/internal/nl2sql"
	"github.com/ectormgl/SQLTranslator/internal/query/sqldb"
	"github.com/ectormgl/SQLTranslator/internal/schema"
	"github.com/ectormgl/SQLTranslator/internal/session"
	s3store "github.com/ectormgl/SQLTranslator/internal/storage/s3"
)

func DatabaseOptions(cfg config.DatabaseConfig) database.Options {
	return database.Options{
		ConnectTimeout:  cfg.ConnectTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
}

func NewTranslator(cfg config.AIConfig) (nl2sql.Translator, error) {
	return nl2sql.New(nl2sql.Config{
		Provider:    cfg.Provider,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
}

// NewManager wires the translator, query engine, schema introspection and,
// when enabled, the Parquet exporter.
func NewManager(ctx context.Context, cfg config.Config, logger *slog.Logger) (*session.Manager, error) {
	translator, err := NewTranslator(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("initialize query translator: %w", err)
	}

	opts := DatabaseOptions(cfg.Database)
	sampleRows := cfg.Database.SchemaSampleRows
	deps := session.Deps{
		Translator: translator,
		Engine:     sqldb.NewEngine(database.Open, opts),
		Open:       database.Open,
		DBOptions:  opts,
		Introspect: func(db *sql.DB, dialect dsn.Dialect) schema.Introspector {
			return schema.NewSQLIntrospector(db, dialect, schema.Options{SampleRows: sampleRows})
		},
		HostedURI: cfg.Database.RemoteURI,
		Logger:    logger,
	}

	if cfg.Export.Enabled {
		store, err := s3store.New(ctx, cfg.Export.ObjectStore)
		if err != nil {
			return nil, fmt.Errorf("initialize object store: %w", err)
		}
		exporter, err := export.New(store)
		if err != nil {
			return nil, err
		}
		deps.Exporter = exporter
	}
	return session.NewManager(deps)
}
