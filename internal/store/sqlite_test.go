package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/amishk599/jobfit/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) model.CacheStore { return newTestStore(t) })
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if _, err := s.UpdateJobCache(ctx, "Go Developer @ Initech", func(r *model.JobPostingCacheRecord) {
		r.Analysis = "strong match"
	}); err != nil {
		t.Fatalf("UpdateJobCache: %v", err)
	}
	s.Close()

	s2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	data, err := s2.GetUserData(ctx)
	if err != nil {
		t.Fatalf("GetUserData: %v", err)
	}
	if rec := data.JobPostingCache.Get("Go Developer @ Initech"); rec == nil || rec.Analysis != "strong match" {
		t.Errorf("record after reopen = %+v", rec)
	}
}

func TestSQLiteStore_ReadFailureIsStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	s := &SQLiteStore{db: db}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT document FROM user_data")).
		WillReturnError(errors.New("disk I/O error"))

	_, err = s.GetUserData(context.Background())
	if !model.IsKind(err, model.KindStorage) {
		t.Fatalf("GetUserData error = %v, want storage error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLiteStore_FailedWriteRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	s := &SQLiteStore{db: db}

	doc, _ := model.EncodeUserData(model.DefaultUserData())
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT document FROM user_data")).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(string(doc)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_data")).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err = s.UpdateJobCache(context.Background(), "Go Developer @ Initech", func(r *model.JobPostingCacheRecord) {
		r.Analysis = "x"
	})
	if !model.IsKind(err, model.KindStorage) {
		t.Fatalf("UpdateJobCache error = %v, want storage error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLiteStore_CorruptDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	s := &SQLiteStore{db: db}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT document FROM user_data")).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow("{not json"))

	_, err = s.GetUserData(context.Background())
	if !model.IsKind(err, model.KindStorage) {
		t.Fatalf("GetUserData error = %v, want storage error", err)
	}
	var syntax *json.SyntaxError
	if !errors.As(err, &syntax) {
		t.Errorf("expected underlying JSON syntax error, got %v", err)
	}
}
