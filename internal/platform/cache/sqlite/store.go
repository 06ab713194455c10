// Package sqlite provides a SQLite-backed payload cache.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/scholarflow/internal/platform/cache"
	"github.com/louisbranch/scholarflow/internal/platform/cache/sqlite/migrations"
	"github.com/louisbranch/scholarflow/internal/platform/storage/sqlitemigrate"
)

// Store provides SQLite-backed persistence for cache entries.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a cache SQLite store.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sqlitemigrate.Open(ctx, path, migrations.FS)
	if err != nil {
		return nil, err
	}
	return NewWithDB(sqlDB), nil
}

// NewWithDB wraps an already migrated database.
func NewWithDB(sqlDB *sql.DB) *Store {
	return &Store{sqlDB: sqlDB, now: time.Now}
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get loads a live cache payload by key. Expired rows read as misses.
func (s *Store) Get(ctx context.Context, cacheKey string) ([]byte, bool, error) {
	if s == nil || s.sqlDB == nil {
		return nil, false, fmt.Errorf("storage is not configured")
	}
	cacheKey = strings.TrimSpace(cacheKey)
	if cacheKey == "" {
		return nil, false, fmt.Errorf("cache key is required")
	}

	var payload []byte
	var expiresAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload_json, expires_at FROM cache_entries WHERE cache_key = ?`,
		cacheKey,
	).Scan(&payload, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cache entry: %w", err)
	}
	if expiresAt > 0 && expiresAt <= s.now().UTC().UnixMilli() {
		return nil, false, nil
	}
	return payload, true, nil
}

// Set upserts a cache payload by key.
func (s *Store) Set(ctx context.Context, cacheKey string, payload []byte, ttl time.Duration) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	cacheKey = strings.TrimSpace(cacheKey)
	if cacheKey == "" {
		return fmt.Errorf("cache key is required")
	}
	if len(payload) == 0 {
		return fmt.Errorf("cache payload is required")
	}

	now := s.now().UTC()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixMilli()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO cache_entries (cache_key, scope, payload_json, stored_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		    scope = excluded.scope,
		    payload_json = excluded.payload_json,
		    stored_at = excluded.stored_at,
		    expires_at = excluded.expires_at`,
		cacheKey,
		scopeOf(cacheKey),
		payload,
		now.UnixMilli(),
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// Delete removes cache entries by key.
func (s *Store) Delete(ctx context.Context, cacheKeys ...string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	for _, cacheKey := range cacheKeys {
		cacheKey = strings.TrimSpace(cacheKey)
		if cacheKey == "" {
			continue
		}
		if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_key = ?`, cacheKey); err != nil {
			return fmt.Errorf("delete cache entry: %w", err)
		}
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at > 0 AND expires_at <= ?`,
		s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge cache entries: %w", err)
	}
	return result.RowsAffected()
}

// scopeOf groups keys by their prefix up to the last colon.
func scopeOf(cacheKey string) string {
	if idx := strings.LastIndex(cacheKey, ":"); idx > 0 {
		return cacheKey[:idx]
	}
	return "default"
}

var _ cache.Cache = (*Store)(nil)
