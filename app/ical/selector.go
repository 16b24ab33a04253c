package ical

import (
	"time"
)

// Select picks the event of interest at the given time from a pooled event
// list, or nil if there is none.
//
// An ongoing event always wins over a merely upcoming one, even when the
// upcoming event starts sooner than the ongoing one ends. Among ongoing
// events the first in input order is chosen, so callers must pool events in
// a stable order (source list order, then each source's ascending start
// order) for deterministic results. With no ongoing event, the upcoming
// event with the earliest start is returned.
func Select(events []Event, now time.Time) *Event {
	for i := range events {
		if events[i].IsOngoing(now) {
			ev := events[i]
			return &ev
		}
	}

	var next *Event
	for i := range events {
		if !events[i].IsUpcoming(now) {
			continue
		}
		if next == nil || events[i].StartTime.Before(next.StartTime) {
			ev := events[i]
			next = &ev
		}
	}

	return next
}
