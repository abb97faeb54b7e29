package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPostgresWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresStore(db), mock, db
}

func TestPostgresStore_Load(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+data\s+FROM\s+vault_record\s+WHERE\s+id\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"data"}).AddRow([]byte("record"))
	mock.ExpectQuery(q).WithArgs(1).WillReturnRows(rows)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != "record" {
		t.Fatalf("unexpected data: %q", got)
	}
}

func TestPostgresStore_Load_NotFound(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+data\s+FROM\s+vault_record\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs(1).WillReturnError(sql.ErrNoRows)

	_, err := s.Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPostgresStore_Load_DBError(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+data\s+FROM\s+vault_record\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs(1).WillReturnError(errors.New("db down"))

	_, err := s.Load(context.Background())
	if err == nil || !regexp.MustCompile(`db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresStore_Save(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+vault_record\s*\(id,\s*data\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET\s+data\s*=\s*EXCLUDED\.data\s*$`
	mock.ExpectExec(q).WithArgs(1, []byte("record")).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Save(context.Background(), []byte("record")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_Save_DBError(t *testing.T) {
	s, mock, db := newPostgresWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+vault_record\b`
	mock.ExpectExec(q).WithArgs(1, []byte("record")).WillReturnError(errors.New("db down"))

	err := s.Save(context.Background(), []byte("record"))
	if err == nil || !regexp.MustCompile(`db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
