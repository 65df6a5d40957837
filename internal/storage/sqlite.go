package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"

	_ "modernc.org/sqlite"
)

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at INTEGER NOT NULL)`
	selectValueQuery = `SELECT value FROM kv WHERE key = ?`
	upsertValueQuery = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteValueQuery = `DELETE FROM kv WHERE key = ?`
)

// SQLiteStore keeps every key as one row of a single kv table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, domainErrors.ErrStorageWrite.WithError(fmt.Errorf("error creating database directory: %w", err))
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domainErrors.ErrStorageRead.WithError(err)
	}
	// one writer keeps read-modify-write cycles of callers consistent
	db.SetMaxOpenConns(1)

	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an open database and ensures the kv table exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(createTableQuery); err != nil {
		return nil, domainErrors.ErrStorageWrite.WithError(fmt.Errorf("error creating kv table: %w", err))
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, selectValueQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, domainErrors.ErrStorageRead.WithError(err).WithContext("key", key)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertValueQuery, key, value, s.now().Unix()); err != nil {
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", key)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteValueQuery, key); err != nil {
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", key)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
