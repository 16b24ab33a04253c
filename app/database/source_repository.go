package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepo)(nil)

// SourceRepo handles database operations for calendar sources
type SourceRepo struct {
	db *DB
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// UpsertSource inserts a source or updates its name and active flag if the
// URL is already registered.
func (r *SourceRepo) UpsertSource(url, name string, active bool) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO sources (url, name, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (url) DO UPDATE SET name = $2, active = $3
		RETURNING id
	`, url, name, active).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert source: %w", err)
	}

	return id, nil
}

func (r *SourceRepo) GetSource(url string) (*Source, error) {
	var source Source
	var created string
	err := r.db.QueryRow(`
		SELECT id, url, name, active, created_at
		FROM sources
		WHERE url = $1
	`, url).Scan(&source.ID, &source.URL, &source.Name, &source.Active, &created)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	source.CreatedAt = parseCreatedAt(created)

	return &source, nil
}

// parseCreatedAt parses the datetime('now') text sqlite writes. An
// unparsable value degrades to the zero time rather than failing the read.
func parseCreatedAt(value string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ListSources returns all sources ordered by insertion. The sync
// orchestrator relies on this ordering for deterministic event pooling.
func (r *SourceRepo) ListSources() ([]Source, error) {
	rows, err := r.db.Query(`
		SELECT id, url, name, active, created_at
		FROM sources
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var source Source
		var created string
		if err := rows.Scan(&source.ID, &source.URL, &source.Name, &source.Active, &created); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		source.CreatedAt = parseCreatedAt(created)
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// SetSourceActive flips the active flag. The second return value reports
// whether a source with the given URL existed.
func (r *SourceRepo) SetSourceActive(url string, active bool) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE sources SET active = $2 WHERE url = $1
	`, url, active)
	if err != nil {
		return false, fmt.Errorf("failed to update source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *SourceRepo) RemoveSource(url string) error {
	if _, err := r.db.Exec(`DELETE FROM sources WHERE url = $1`, url); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}
	return nil
}

func (r *SourceRepo) GetSourceCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}
