package ical

import (
	"time"
)

// Event is a single calendar entry parsed from a VEVENT block. Events are
// value objects: built once per parse pass and never mutated.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// IsOngoing reports whether the event's time range contains now. An event
// whose end precedes its start is never ongoing.
func (e Event) IsOngoing(now time.Time) bool {
	return !now.Before(e.StartTime) && !now.After(e.EndTime)
}

// IsUpcoming reports whether the event starts after now.
func (e Event) IsUpcoming(now time.Time) bool {
	return e.StartTime.After(now)
}

// TimeUntilStart returns the duration from now until the event starts.
func (e Event) TimeUntilStart(now time.Time) time.Duration {
	return e.StartTime.Sub(now)
}

// TimeUntilEnd returns the duration from now until the event ends.
func (e Event) TimeUntilEnd(now time.Time) time.Duration {
	return e.EndTime.Sub(now)
}
