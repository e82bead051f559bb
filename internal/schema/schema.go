// Package schema describes the tables of a live database as text for the
// prompt builder. Nothing is cached: every Describe call queries metadata.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
	"github.com/ectormgl/SQLTranslator/internal/dsn"
)

const maxSampleValueLen = 100

type Introspector interface {
	Describe(ctx context.Context) (string, error)
}

type Column struct {
	Name     string
	DataType string
	Nullable bool
}

type Table struct {
	Name       string
	Columns    []Column
	SampleCols []string
	SampleRows [][]string
}

type Options struct {
	SampleRows int
}

type SQLIntrospector struct {
	db         *sql.DB
	dialect    dsn.Dialect
	sampleRows int
}

func NewSQLIntrospector(db *sql.DB, dialect dsn.Dialect, opts Options) *SQLIntrospector {
	sampleRows := opts.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	return &SQLIntrospector{db: db, dialect: dialect, sampleRows: sampleRows}
}

func (s *SQLIntrospector) Describe(ctx context.Context) (string, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return "", err
	}
	return Render(tables), nil
}

// Tables loads column metadata and, when configured, a few sample rows per
// table. Sample failures are skipped; metadata failures are returned.
func (s *SQLIntrospector) Tables(ctx context.Context) ([]Table, error) {
	if s.db == nil {
		return nil, apperr.New(apperr.KindExecution, "schema handle is not open")
	}
	metadataSQL, err := columnsQuery(s.dialect)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, metadataSQL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExecution, "list table columns", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []Table
	for rows.Next() {
		var tableName, columnName, dataType, nullable string
		if err := rows.Scan(&tableName, &columnName, &dataType, &nullable); err != nil {
			return nil, apperr.Wrap(apperr.KindExecution, "scan column metadata", err)
		}
		if len(tables) == 0 || tables[len(tables)-1].Name != tableName {
			tables = append(tables, Table{Name: tableName})
		}
		current := &tables[len(tables)-1]
		current.Columns = append(current.Columns, Column{
			Name:     columnName,
			DataType: strings.ToUpper(dataType),
			Nullable: isNullable(nullable),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindExecution, "iterate column metadata", err)
	}

	if s.sampleRows > 0 {
		for i := range tables {
			cols, sample, err := s.sample(ctx, tables[i].Name)
			if err != nil {
				continue
			}
			tables[i].SampleCols = cols
			tables[i].SampleRows = sample
		}
	}
	return tables, nil
}

func (s *SQLIntrospector) sample(ctx context.Context, table string) ([]string, [][]string, error) {
	rows, err := s.db.QueryContext(ctx, sampleQuery(s.dialect, table, s.sampleRows))
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, nil, err
		}
		formatted := make([]string, len(values))
		for i, value := range values {
			formatted[i] = formatSample(value)
		}
		out = append(out, formatted)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, out, nil
}

func columnsQuery(dialect dsn.Dialect) (string, error) {
	switch dialect {
	case dsn.DialectMySQL:
		return `SELECT table_name, column_name, column_type, is_nullable
FROM information_schema.columns
WHERE table_schema = DATABASE()
ORDER BY table_name, ordinal_position`, nil
	case dsn.DialectPostgreSQL, dsn.DialectDuckDB:
		return `SELECT table_name, column_name, data_type, is_nullable
FROM information_schema.columns
WHERE table_schema = current_schema()
ORDER BY table_name, ordinal_position`, nil
	case dsn.DialectOracle:
		return `SELECT table_name, column_name, data_type, nullable
FROM user_tab_columns
ORDER BY table_name, column_id`, nil
	default:
		return "", apperr.Configuration("unsupported database type: %q", string(dialect))
	}
}

func sampleQuery(dialect dsn.Dialect, table string, limit int) string {
	quoted := QuoteIdent(dialect, table)
	if dialect == dsn.DialectOracle {
		return fmt.Sprintf("SELECT * FROM %s FETCH FIRST %d ROWS ONLY", quoted, limit)
	}
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoted, limit)
}

func QuoteIdent(dialect dsn.Dialect, value string) string {
	if dialect == dsn.DialectMySQL {
		return "`" + strings.ReplaceAll(value, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func isNullable(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "YES", "Y", "TRUE":
		return true
	default:
		return false
	}
}

func formatSample(value any) string {
	var text string
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case []byte:
		text = string(typed)
	default:
		text = fmt.Sprint(typed)
	}
	return truncateRunes(text, maxSampleValueLen)
}

func truncateRunes(text string, limit int) string {
	offset := 0
	for count := 0; offset < len(text); count++ {
		if count == limit {
			return text[:offset]
		}
		_, size := utf8.DecodeRuneInString(text[offset:])
		offset += size
	}
	return text
}
