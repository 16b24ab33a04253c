package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo stores the last published selection result as a single row.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) PutSnapshot(snapshot Snapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO snapshot (id, has_event, title, time_range, status, location, summary_line, remaining_ms, is_ongoing, published_at_ms)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			has_event = $1, title = $2, time_range = $3, status = $4,
			location = $5, summary_line = $6, remaining_ms = $7,
			is_ongoing = $8, published_at_ms = $9
	`, snapshot.HasEvent, snapshot.Title, snapshot.TimeRange, snapshot.Status,
		snapshot.Location, snapshot.SummaryLine, snapshot.RemainingMs,
		snapshot.IsOngoing, snapshot.PublishedAt.UnixMilli())

	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	return nil
}

func (r *SnapshotRepo) GetSnapshot() (*Snapshot, error) {
	var snapshot Snapshot
	var publishedMs int64
	err := r.db.QueryRow(`
		SELECT has_event, title, time_range, status, location, summary_line, remaining_ms, is_ongoing, published_at_ms
		FROM snapshot
		WHERE id = 1
	`).Scan(&snapshot.HasEvent, &snapshot.Title, &snapshot.TimeRange,
		&snapshot.Status, &snapshot.Location, &snapshot.SummaryLine,
		&snapshot.RemainingMs, &snapshot.IsOngoing, &publishedMs)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snapshot.PublishedAt = time.UnixMilli(publishedMs).UTC()

	return &snapshot, nil
}
