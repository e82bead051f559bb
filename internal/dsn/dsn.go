// Package dsn turns a connection descriptor (a URI or discrete credentials)
// into the driver parameters used to reach one of the supported SQL dialects.
package dsn

import (
	"strings"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
)

// Dialect identifies a supported database product.
type Dialect string

const (
	DialectMySQL      Dialect = "mysql"
	DialectPostgreSQL Dialect = "postgresql"
	DialectOracle     Dialect = "oracle"
	DialectDuckDB     Dialect = "duckdb"
)

var supported = []Dialect{DialectMySQL, DialectPostgreSQL, DialectOracle, DialectDuckDB}

// Dialects returns the supported dialects in display order.
func Dialects() []Dialect {
	out := make([]Dialect, len(supported))
	copy(out, supported)
	return out
}

// ParseDialect accepts a dialect tag or its display name, case-insensitively.
func ParseDialect(raw string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mysql":
		return DialectMySQL, nil
	case "postgresql", "postgres":
		return DialectPostgreSQL, nil
	case "oracle":
		return DialectOracle, nil
	case "duckdb":
		return DialectDuckDB, nil
	default:
		return "", apperr.Configuration("unsupported database type: %q", raw)
	}
}

func (d Dialect) Valid() bool {
	for _, candidate := range supported {
		if d == candidate {
			return true
		}
	}
	return false
}

func (d Dialect) DisplayName() string {
	switch d {
	case DialectMySQL:
		return "MySQL"
	case DialectPostgreSQL:
		return "PostgreSQL"
	case DialectOracle:
		return "Oracle"
	case DialectDuckDB:
		return "DuckDB"
	default:
		return string(d)
	}
}

// DefaultPort is 0 for embedded dialects.
func (d Dialect) DefaultPort() int {
	switch d {
	case DialectMySQL:
		return 3306
	case DialectPostgreSQL:
		return 5432
	case DialectOracle:
		return 1521
	default:
		return 0
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectPostgreSQL:
		return "pgx"
	case DialectOracle:
		return "oracle"
	case DialectDuckDB:
		return "duckdb"
	default:
		return ""
	}
}

func (d Dialect) Embedded() bool {
	return d == DialectDuckDB
}

// Placeholder is the example URI shown to users picking a dialect.
func (d Dialect) Placeholder() string {
	switch d {
	case DialectDuckDB:
		return "duckdb:///path/to/database.duckdb"
	case "":
		return ""
	default:
		return string(d) + "://user:password@host:port/database"
	}
}

// Descriptor is what a user supplies on connect: a URI, or discrete fields
// when URI is empty.
type Descriptor struct {
	Dialect  Dialect
	URI      string
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// Params are the resolved connection parameters. DSN is ready for
// sql.Open(Driver, DSN).
type Params struct {
	Dialect  Dialect
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Options  map[string]string
}
