package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"lockbox/internal/dbx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore keeps the record in a single-row table inside a local SQLite
// database, for setups that already carry one around.
type SQLiteStore struct {
	q  dbx.DBTX
	db *sql.DB // set when the store owns the connection
}

// NewSQLiteStore wraps an existing database handle. Used by tests.
func NewSQLiteStore(q dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{q: q}
}

// OpenSQLiteStore opens (creating if needed) the database at dsn and applies
// pending migrations.
func OpenSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{q: db, db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	query := `select data from vault_record where id = 1`
	err := s.q.QueryRowContext(ctx, query).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select vault record: %w", err)
	}
	return data, nil
}

func (s *SQLiteStore) Save(ctx context.Context, data []byte) error {
	query := `insert into vault_record (id, data) values (1, ?)
		on conflict (id) do update set data = excluded.data`
	if _, err := s.q.ExecContext(ctx, query, data); err != nil {
		return fmt.Errorf("failed to save vault record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
