package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"lockbox/internal/dbx"
)

// PostgresStore keeps the record in a single-row table, for setups where the
// encrypted blob should live in a shared database. The blob stays opaque;
// decryption never happens server-side.
type PostgresStore struct {
	q  dbx.DBTX
	db *sql.DB // set when the store owns the connection
}

// NewPostgresStore wraps an existing database handle. Used by tests.
func NewPostgresStore(q dbx.DBTX) *PostgresStore {
	return &PostgresStore{q: q}
}

// OpenPostgresStore connects to dsn via the pgx stdlib driver and ensures the
// storage table exists.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	s := &PostgresStore{q: db, db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS vault_record (
		id integer PRIMARY KEY,
		data bytea NOT NULL
	)`
	if _, err := s.q.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating vault_record table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	query := `SELECT data FROM vault_record WHERE id = $1`
	err := s.q.QueryRowContext(ctx, query, 1).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return data, nil
}

func (s *PostgresStore) Save(ctx context.Context, data []byte) error {
	query := `INSERT INTO vault_record (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`
	if _, err := s.q.ExecContext(ctx, query, 1, data); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
