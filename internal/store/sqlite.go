package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobfit/internal/model"
)

var _ model.CacheStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the user document as a single row in a SQLite database.
type SQLiteStore struct {
	mu sync.Mutex // serializes read-modify-write within the process
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// user_data table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS user_data (
		key        TEXT PRIMARY KEY,
		document   TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating user_data table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func readDocument(ctx context.Context, q queryer) ([]byte, bool, error) {
	var doc string
	err := q.QueryRowContext(ctx, "SELECT document FROM user_data WHERE key = ?", documentKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc), true, nil
}

func writeDocument(ctx context.Context, e execer, enc []byte) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO user_data (key, document, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		documentKey, string(enc))
	return err
}

// GetUserData returns the stored document or the default skeleton.
func (s *SQLiteStore) GetUserData(ctx context.Context) (*model.UserRelevantData, error) {
	raw, found, err := readDocument(ctx, s.db)
	if err != nil {
		return nil, model.StorageError("reading user data", err)
	}
	data, err := decodeDocument(raw, found)
	if err != nil {
		return nil, model.StorageError("reading user data", err)
	}
	return data, nil
}

// SaveUserData replaces the stored document.
func (s *SQLiteStore) SaveUserData(ctx context.Context, data *model.UserRelevantData) error {
	enc, err := model.EncodeUserData(data)
	if err != nil {
		return model.StorageError("saving user data", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeDocument(ctx, s.db, enc); err != nil {
		return model.StorageError("saving user data", err)
	}
	return nil
}

// UpdateJobCache applies mutate to jobID's record inside one transaction.
func (s *SQLiteStore) UpdateJobCache(ctx context.Context, jobID string, mutate func(*model.JobPostingCacheRecord)) (*model.UserRelevantData, error) {
	var data *model.UserRelevantData
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		raw, found, err := readDocument(ctx, tx)
		if err != nil {
			return err
		}
		var enc []byte
		data, enc, err = applyJobUpdate(raw, found, jobID, mutate)
		if err != nil {
			return err
		}
		return writeDocument(ctx, tx, enc)
	})
	if err != nil {
		return nil, model.StorageError(fmt.Sprintf("updating job %q", jobID), err)
	}
	return data, nil
}

// ResetJobCache empties the job cache.
func (s *SQLiteStore) ResetJobCache(ctx context.Context) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		raw, found, err := readDocument(ctx, tx)
		if err != nil {
			return err
		}
		enc, err := applyReset(raw, found)
		if err != nil {
			return err
		}
		return writeDocument(ctx, tx, enc)
	})
	if err != nil {
		return model.StorageError("resetting job cache", err)
	}
	return nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
