package database

import (
	"time"
)

type SourceRepository interface {
	UpsertSource(url, name string, active bool) (int64, error)
	GetSource(url string) (*Source, error)
	// ListSources returns all sources in insertion order.
	ListSources() ([]Source, error)
	SetSourceActive(url string, active bool) (bool, error)
	RemoveSource(url string) error
	GetSourceCount() (int, error)
}

// CacheRepository persists the last-known-good raw feed text and the last
// successful fetch time per source URL. A zero last-fetch time means the
// source was never fetched and must never be treated as fresh.
type CacheRepository interface {
	GetCachedText(url string) (string, bool, error)
	PutCachedText(url, text string) error
	GetLastFetchTime(url string) (time.Time, error)
	PutLastFetchTime(url string, t time.Time) error
	Remove(url string) error
}

type SettingsRepository interface {
	GetBool(key string, defaultValue bool) (bool, error)
	SetBool(key string, value bool) error
}

type SnapshotRepository interface {
	PutSnapshot(snapshot Snapshot) error
	// GetSnapshot returns nil when nothing has been published yet.
	GetSnapshot() (*Snapshot, error)
}
