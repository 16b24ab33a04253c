package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ CacheRepository = (*CacheRepo)(nil)

// CacheRepo handles database operations for cached feed text. Each entry
// is written with a single-statement upsert, so concurrent readers see
// either the old or the new row, never a torn one.
type CacheRepo struct {
	db *DB
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db *DB) *CacheRepo {
	return &CacheRepo{db: db}
}

func (r *CacheRepo) GetCachedText(url string) (string, bool, error) {
	var text string
	err := r.db.QueryRow(`
		SELECT raw_text FROM feed_cache WHERE source_url = $1
	`, url).Scan(&text)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached text: %w", err)
	}

	return text, true, nil
}

func (r *CacheRepo) PutCachedText(url, text string) error {
	_, err := r.db.Exec(`
		INSERT INTO feed_cache (source_url, raw_text)
		VALUES ($1, $2)
		ON CONFLICT (source_url) DO UPDATE SET raw_text = $2
	`, url, text)

	if err != nil {
		return fmt.Errorf("failed to store cached text: %w", err)
	}

	return nil
}

// GetLastFetchTime returns the last successful fetch time for the URL.
// The zero time means the source was never fetched.
func (r *CacheRepo) GetLastFetchTime(url string) (time.Time, error) {
	var ms int64
	err := r.db.QueryRow(`
		SELECT last_fetch_ms FROM feed_cache WHERE source_url = $1
	`, url).Scan(&ms)

	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last fetch time: %w", err)
	}

	if ms == 0 {
		return time.Time{}, nil
	}

	return time.UnixMilli(ms), nil
}

func (r *CacheRepo) PutLastFetchTime(url string, t time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO feed_cache (source_url, last_fetch_ms)
		VALUES ($1, $2)
		ON CONFLICT (source_url) DO UPDATE SET last_fetch_ms = $2
	`, url, t.UnixMilli())

	if err != nil {
		return fmt.Errorf("failed to store last fetch time: %w", err)
	}

	return nil
}

// Remove clears both the cached text and the last fetch time for the URL.
func (r *CacheRepo) Remove(url string) error {
	if _, err := r.db.Exec(`DELETE FROM feed_cache WHERE source_url = $1`, url); err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}
