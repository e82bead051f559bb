package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/sijms/go-ora/v2"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
	"github.com/ectormgl/SQLTranslator/internal/dsn"
)

type Options struct {
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// Opener opens and verifies a handle. Tests substitute sqlmock-backed openers.
type Opener func(ctx context.Context, params dsn.Params, opts Options) (*sql.DB, error)

// Open opens a handle for params and pings it once. Failures are connection
// errors; the handle is closed before returning one.
func Open(ctx context.Context, params dsn.Params, opts Options) (*sql.DB, error) {
	if params.Driver == "" {
		return nil, apperr.Configuration("database driver is required")
	}

	db, err := sql.Open(params.Driver, params.DSN)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConnection, fmt.Sprintf("failed to initialize %s database", params.Dialect.DisplayName()), err)
	}
	Configure(db, opts)

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.KindConnection, fmt.Sprintf("failed to initialize %s database", params.Dialect.DisplayName()), err)
	}

	return db, nil
}

func Configure(db *sql.DB, opts Options) {
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
}
