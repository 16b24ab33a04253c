package ical

import (
	"sort"
	"strings"
	"time"
)

const dateLayout = "20060102T150405"

// Parser extracts calendar events from raw ICS feed text. Parsing never
// fails: malformed or incomplete VEVENT blocks are dropped silently so one
// bad entry cannot discard the rest of a feed.
//
// Each physical line is parsed on its own; folded continuation lines are
// not unfolded, so a multi-line SUMMARY or DESCRIPTION keeps only its first
// line. That matches the behavior displayed to users so far and is kept on
// purpose.
type Parser struct{}

// NewParser creates a new ICS parser
func NewParser() *Parser {
	return &Parser{}
}

// scratch accumulates fields of the VEVENT block currently being scanned.
type scratch struct {
	uid         string
	summary     string
	description string
	location    string
	startTime   *time.Time
	endTime     *time.Time
}

// Run parses raw ICS content into events, sorted ascending by start time.
func (p *Parser) Run(data []byte) []Event {
	events := make([]Event, 0)

	inEvent := false
	var cur scratch

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")

		switch {
		case strings.HasPrefix(line, "BEGIN:VEVENT"):
			// A new BEGIN always resets the scratch record, even when the
			// previous block was never closed.
			inEvent = true
			cur = scratch{}

		case strings.HasPrefix(line, "END:VEVENT"):
			if cur.uid != "" && cur.summary != "" && cur.startTime != nil && cur.endTime != nil {
				events = append(events, Event{
					UID:         cur.uid,
					Summary:     cur.summary,
					Description: cur.description,
					Location:    cur.location,
					StartTime:   *cur.startTime,
					EndTime:     *cur.endTime,
				})
			}
			inEvent = false

		case inEvent && strings.HasPrefix(line, "UID:"):
			cur.uid = strings.TrimPrefix(line, "UID:")

		case inEvent && strings.HasPrefix(line, "SUMMARY:"):
			cur.summary = strings.TrimPrefix(line, "SUMMARY:")

		case inEvent && strings.HasPrefix(line, "DESCRIPTION:"):
			cur.description = strings.TrimPrefix(line, "DESCRIPTION:")

		case inEvent && strings.HasPrefix(line, "LOCATION:"):
			cur.location = strings.TrimPrefix(line, "LOCATION:")

		case inEvent && strings.HasPrefix(line, "DTSTART"):
			cur.startTime = parseDate(dateValue(line))

		case inEvent && strings.HasPrefix(line, "DTEND"):
			cur.endTime = parseDate(dateValue(line))
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})

	return events
}

// dateValue extracts the date portion of a DTSTART/DTEND line. Date
// properties may carry parameters (DTSTART;TZID=...:20240115T090000), so
// the value is everything after the last colon.
func dateValue(line string) string {
	idx := strings.LastIndex(line, ":")
	if idx < 0 {
		return ""
	}
	return line[idx+1:]
}

// parseDate parses an ICS date value. A trailing Z selects UTC; otherwise
// the value is interpreted in the process-local timezone. Values matching
// neither layout yield nil, which drops the enclosing event.
func parseDate(value string) *time.Time {
	var t time.Time
	var err error

	if strings.HasSuffix(value, "Z") {
		t, err = time.ParseInLocation(dateLayout, strings.TrimSuffix(value, "Z"), time.UTC)
	} else {
		t, err = time.ParseInLocation(dateLayout, value, time.Local)
	}
	if err != nil {
		return nil
	}

	return &t
}
