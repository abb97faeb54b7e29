package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newSQLiteWithMock(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLiteStore(db), mock, db
}

func TestSQLiteStore_Load(t *testing.T) {
	s, mock, db := newSQLiteWithMock(t)
	defer db.Close()

	q := `(?s)^select\s+data\s+from\s+vault_record\s+where\s+id\s*=\s*1\s*$`

	rows := sqlmock.NewRows([]string{"data"}).AddRow([]byte("record"))
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != "record" {
		t.Fatalf("unexpected data: %q", got)
	}
}

func TestSQLiteStore_Load_NotFound(t *testing.T) {
	s, mock, db := newSQLiteWithMock(t)
	defer db.Close()

	q := `(?s)^select\s+data\s+from\s+vault_record\s+where\s+id\s*=\s*1\s*$`
	mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

	_, err := s.Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_Save(t *testing.T) {
	s, mock, db := newSQLiteWithMock(t)
	defer db.Close()

	q := `(?s)^insert\s+into\s+vault_record\s*\(id,\s*data\)\s*values\s*\(1,\s*\?\)\s*on\s+conflict\s*\(id\)\s*do\s+update\s+set\s+data\s*=\s*excluded\.data\s*$`
	mock.ExpectExec(q).WithArgs([]byte("record")).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Save(context.Background(), []byte("record")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLiteStore_Save_DBError(t *testing.T) {
	s, mock, db := newSQLiteWithMock(t)
	defer db.Close()

	q := `(?s)^insert\s+into\s+vault_record\b`
	mock.ExpectExec(q).WithArgs([]byte("record")).WillReturnError(errors.New("database is locked"))

	if err := s.Save(context.Background(), []byte("record")); err == nil {
		t.Fatal("expected error")
	}
}
