package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var (
	_ DBTX = (*sqlx.DB)(nil)
	_ DBTX = (*sqlx.Tx)(nil)
)

// PlaceholderFor returns the bind variable style of a database/sql driver name.
func PlaceholderFor(driver string) sq.PlaceholderFormat {
	switch driver {
	case "postgres", "pgx":
		return sq.Dollar
	case "oracle", "godror":
		return sq.Colon
	default:
		return sq.Question
	}
}
