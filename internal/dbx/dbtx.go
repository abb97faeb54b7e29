// Package dbx holds the minimal database/sql surface shared by the SQL
// record stores. DBTX is implemented by both *sql.DB and *sql.Tx, so a store
// can run against either.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the record stores.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
