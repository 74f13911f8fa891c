package storage

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/estrateji/edusync/internal/errors"
)

// SQLite is a KV store over a single sqlite table.
type SQLite struct {
	db *sql.DB
}

// Open opens the edusync database in dataDir, creating the directory and
// schema as needed. The database is opened with:
// - WAL mode for concurrent reads
// - a single writer connection (sqlite does not support multiple writers)
func Open(dataDir string) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "edusync.db")

	// modernc.org/sqlite is pure Go, no CGO
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY CHECK(length(key) > 0),
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get returns the value for key, with found=false on a missing key.
func (s *SQLite) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrStorage, "read failed", err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value. A full disk or
// exhausted database surfaces as ErrStorageFull so callers can tell the user
// the write could not even be queued.
func (s *SQLite) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, unixepoch())
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		if isFull(err) {
			return errors.Wrap(errors.ErrStorageFull, "storage exhausted", err)
		}
		return errors.Wrap(errors.ErrStorage, "write failed", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *SQLite) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return errors.Wrap(errors.ErrStorage, "delete failed", err)
	}
	return nil
}

// Keys returns all keys with the given prefix, sorted.
func (s *SQLite) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT key FROM kv WHERE key LIKE ? ORDER BY key", prefix+"%")
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "key scan failed", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.Wrap(errors.ErrStorage, "key scan failed", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "key scan failed", err)
	}
	return keys, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// isFull reports whether err is sqlite's database-or-disk-full condition.
func isFull(err error) bool {
	var se *sqlite.Error
	return stderrors.As(err, &se) && se.Code() == sqlite3.SQLITE_FULL
}
