// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache implements the persistent expiring key-value store shared
// by the outbound HTTP client (raw response memoization) and the resolver
// (resolved-result memoization). Values are stored as JSON in a single
// SQLite table, so entries survive process restarts. Expiry is lazy: an
// entry past its deadline is treated as absent and deleted on the read
// that observes it; nothing sweeps the table in the background.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeNow is the clock used for expiry decisions. Tests substitute it to
// move time forward without sleeping.
var timeNow = time.Now

// Store is a concurrency-safe expiring key→JSON store backed by SQLite.
// A single mutex serializes operations; each one is a point read or write,
// so the coarse lock is not a throughput concern.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the cache database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		expires_at INTEGER
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get looks up key and unmarshals the stored JSON into dst. It returns
// false when the key is absent or expired. The check-and-purge of an
// expired entry happens under the store lock, so a concurrent reader
// never observes a logically expired value as present.
func (s *Store) Get(key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	var expiresAt sql.NullInt64
	err := s.db.QueryRow("SELECT value, expires_at FROM cache WHERE key = ?", key).
		Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache entry: %w", err)
	}

	if expiresAt.Valid && expiresAt.Int64 < timeNow().Unix() {
		if _, err := s.db.Exec("DELETE FROM cache WHERE key = ?", key); err != nil {
			return false, fmt.Errorf("purging expired cache entry: %w", err)
		}
		return false, nil
	}

	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return false, fmt.Errorf("decoding cache entry: %w", err)
	}
	return true, nil
}

// Set stores value under key as JSON. A positive ttl sets an absolute
// expiry deadline; zero means the entry never expires on its own.
// Writing an existing key replaces it (last writer wins).
func (s *Store) Set(key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	var expiresAt any
	if ttl > 0 {
		expiresAt = timeNow().Add(ttl).Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO cache (key, value, expires_at) VALUES (?, ?, ?)",
		key, string(payload), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
