package engine

import (
	"time"

	"github.com/Pianokruemel/TymR/app/ical"
)

// Mode selects the staleness policy for a sync pass.
type Mode string

const (
	// ModeScheduled re-fetches only sources whose cache is older than the
	// staleness threshold (or was never filled).
	ModeScheduled Mode = "scheduled"
	// ModeForceAll re-fetches every active source regardless of staleness.
	ModeForceAll Mode = "force_all"
	// ModeForceOne re-fetches exactly one URL; all other sources reuse
	// their cache even when stale.
	ModeForceOne Mode = "force_one"
)

// Request describes one sync invocation. URL is only meaningful for
// ModeForceOne.
type Request struct {
	Mode Mode
	URL  string
}

// Selection is the outcome of one selection pass: the chosen event plus
// the derived fields presentation collaborators consume.
type Selection struct {
	Event         ical.Event
	IsOngoing     bool
	TimeRemaining time.Duration
}

// PublisherInterface receives every selection result, including the
// explicit no-events case (nil selection).
type PublisherInterface interface {
	Publish(selection *Selection) error
}
