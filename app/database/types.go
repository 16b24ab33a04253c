package database

import (
	"time"
)

// Source is a configured calendar feed URL. Listing order (insertion order)
// defines the pooling order used by the sync orchestrator.
type Source struct {
	ID        int64
	URL       string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Snapshot is the last published selection result, stored as the plain
// strings the presentation surfaces render. RemainingMs is -1 when no
// event was selected, matching the published no-events sentinel.
type Snapshot struct {
	HasEvent    bool      `json:"has_event"`
	Title       string    `json:"title"`
	TimeRange   string    `json:"time_range"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	SummaryLine string    `json:"summary_line"`
	RemainingMs int64     `json:"remaining_ms"`
	IsOngoing   bool      `json:"is_ongoing"`
	PublishedAt time.Time `json:"published_at"`
}
