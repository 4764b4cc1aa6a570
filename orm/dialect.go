package orm

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect describes placeholder and identifier rules of a SQL database.
type Dialect interface {
	Name() string
	// AppendPlaceholder appends the placeholder for the n-th (1-based) argument.
	AppendPlaceholder(b []byte, n int) []byte
	AppendIdent(b []byte, ident string) []byte
	HasReturning() bool
}

var (
	Postgres Dialect = pgDialect{}
	MySQL    Dialect = mysqlDialect{}
	SQLite   Dialect = sqliteDialect{}
)

// ParseDialect returns the dialect registered under name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pg", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return nil, fmt.Errorf("orm: unknown dialect=%q", name)
}

type pgDialect struct{}

func (pgDialect) Name() string { return "postgres" }

func (pgDialect) AppendPlaceholder(b []byte, n int) []byte {
	b = append(b, '$')
	return strconv.AppendInt(b, int64(n), 10)
}

func (pgDialect) AppendIdent(b []byte, ident string) []byte {
	return appendIdent(b, ident, '"')
}

func (pgDialect) HasReturning() bool { return true }

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) AppendPlaceholder(b []byte, _ int) []byte {
	return append(b, '?')
}

func (mysqlDialect) AppendIdent(b []byte, ident string) []byte {
	return appendIdent(b, ident, '`')
}

func (mysqlDialect) HasReturning() bool { return false }

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) AppendPlaceholder(b []byte, _ int) []byte {
	return append(b, '?')
}

func (sqliteDialect) AppendIdent(b []byte, ident string) []byte {
	return appendIdent(b, ident, '"')
}

func (sqliteDialect) HasReturning() bool { return true }

// appendIdent quotes every dot separated part of ident.
func appendIdent(b []byte, ident string, quote byte) []byte {
	b = append(b, quote)
	for i := 0; i < len(ident); i++ {
		switch c := ident[i]; c {
		case quote:
			b = append(b, quote, quote)
		case '.':
			b = append(b, quote, '.', quote)
		default:
			b = append(b, c)
		}
	}
	b = append(b, quote)
	return b
}
