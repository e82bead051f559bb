package sqldb

import (
	"context"
	"strings"
	"time"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
	"github.com/ectormgl/SQLTranslator/internal/database"
	"github.com/ectormgl/SQLTranslator/internal/query"
)

// Engine runs each statement on a connection of its own unless the request
// carries a handle. Nothing is pooled between calls.
type Engine struct {
	Open    database.Opener
	Options database.Options
}

func NewEngine(opener database.Opener, opts database.Options) *Engine {
	if opener == nil {
		opener = database.Open
	}
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	return &Engine{Open: opener, Options: opts}
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	sqlText := stripTrailingSemicolons(request.SQL)
	if sqlText == "" {
		return query.Result{}, apperr.New(apperr.KindExecution, "sql is required")
	}

	start := time.Now()
	db := request.DB
	if db == nil {
		opened, err := e.Open(ctx, request.Params, e.Options)
		if err != nil {
			return query.Result{}, apperr.Wrap(apperr.KindExecution, "open query connection", err)
		}
		defer func() { _ = opened.Close() }()
		db = opened
	}

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, apperr.Wrap(apperr.KindExecution, "execute query", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, apperr.Wrap(apperr.KindExecution, "query columns", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.Result{}, apperr.Wrap(apperr.KindExecution, "scan row", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, apperr.Wrap(apperr.KindExecution, "iterate rows", err)
	}

	return query.Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
