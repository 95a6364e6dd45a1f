package domain

import (
	"strings"
	"time"
)

// DisplayLayout renders a canonical date the way API responses show it, e.g. "Sun Jan 15 2023".
const DisplayLayout = "Mon Jan 02 2006"

// StorageLayout is the day-level textual form of a canonical date.
const StorageLayout = "2006-01-02"

// Clock returns the current instant. Tests swap it for a fixed time.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

var acceptedLayouts = []string{
	StorageLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DisplayLayout,
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
	"Jan 2, 2006",
}

// Epoch is the lower bound used when a log query has no start date.
var Epoch = time.Unix(0, 0).UTC()

// StorageDate truncates t to midnight UTC of its calendar day.
func StorageDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DisplayDate renders the canonical date for responses.
func DisplayDate(t time.Time) string {
	return StorageDate(t).Format(DisplayLayout)
}

// ParseDate parses input against the accepted layouts and returns its canonical date.
func ParseDate(input string) (time.Time, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, false
	}
	for _, layout := range acceptedLayouts {
		if parsed, err := time.Parse(layout, input); err == nil {
			return StorageDate(parsed), true
		}
	}
	return time.Time{}, false
}

// NormalizeDate returns the canonical date for input, falling back to the day of now when the
// input is blank or does not parse.
func NormalizeDate(input string, now time.Time) time.Time {
	if parsed, ok := ParseDate(input); ok {
		return parsed
	}
	return StorageDate(now)
}
