package sqlitecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/leofalp/jsonmend/providers/cache"
)

// Store is a SQLite-backed cache.
type Store struct {
	conn *sql.DB
	path string
	now  func() time.Time
}

var (
	_ cache.Store  = (*Store)(nil)
	_ cache.Purger = (*Store)(nil)
)

// Open creates or opens the cache database at path, creating parent
// directories as needed. Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	// One writer at a time; this also keeps a ":memory:" database on a single connection.
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}

	return &Store{conn: conn, path: path, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value under key. Expired entries and entries written with
// another schema are misses.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var blob []byte
	err := s.conn.QueryRowContext(ctx, `SELECT entry FROM cache_entries WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlitecache: get: %w", err)
	}

	entry, err := cache.DecodeEntry(blob)
	if errors.Is(err, cache.ErrSchemaMismatch) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.Expired(s.now()) {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set stores value under key, replacing any previous entry.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := cache.NewEntry(value, s.now(), ttl)
	blob, err := cache.EncodeEntry(entry)
	if err != nil {
		return err
	}

	var expiresAt int64
	if !entry.ExpiresAt.IsZero() {
		expiresAt = entry.ExpiresAt.UnixMilli()
	}

	_, err = s.conn.ExecContext(ctx, `
INSERT INTO cache_entries (key, entry, expires_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET entry = excluded.entry, expires_at = excluded.expires_at`,
		key, blob, expiresAt)
	if err != nil {
		return fmt.Errorf("sqlitecache: set: %w", err)
	}
	return nil
}

// Purge deletes every entry.
func (s *Store) Purge(ctx context.Context) (int, error) {
	return s.deleteWhere(ctx, `DELETE FROM cache_entries`)
}

// PurgeExpired deletes entries past their expiry.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	return s.deleteWhere(ctx, `DELETE FROM cache_entries WHERE expires_at > 0 AND expires_at <= ?`, s.now().UnixMilli())
}

func (s *Store) deleteWhere(ctx context.Context, query string, args ...any) (int, error) {
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlitecache: purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlitecache: purge: %w", err)
	}
	return int(n), nil
}
