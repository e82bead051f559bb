package query

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ectormgl/SQLTranslator/internal/dsn"
)

type Request struct {
	Params dsn.Params
	SQL    string
	// DB, when set, runs the statement on an existing handle instead of a
	// fresh connection. Embedded databases hold a file lock per handle.
	DB *sql.DB
}

// Result is a materialized result table. Rows are aligned to Columns.
type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

// Text renders one result cell for display. SQL NULL becomes "NULL".
func Text(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case string:
		return typed
	case []byte:
		return string(typed)
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(typed)
	}
}
