package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// LogQuery selects a user's exercises with From <= Date < To. Limit <= 0 means no cap.
type LogQuery struct {
	UserID string
	From   time.Time
	To     time.Time
	Limit  int
}

// NewLogQuery builds a LogQuery from raw request parameters. Missing or unparseable bounds fall
// back to the epoch and to the day of now, and a missing or non-numeric limit leaves results uncapped.
func NewLogQuery(userID, from, to, limit string, now time.Time) LogQuery {
	q := LogQuery{
		UserID: userID,
		From:   Epoch,
		To:     StorageDate(now),
		Limit:  ParseLimit(limit),
	}
	if parsed, ok := ParseDate(from); ok {
		q.From = parsed
	}
	if parsed, ok := ParseDate(to); ok {
		q.To = parsed
	}
	return q
}

// ParseLimit converts a raw limit to a cap, truncating fractions. Anything that is not a
// positive number yields 0.
func ParseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// Matches reports whether an exercise falls inside the query window.
func (q LogQuery) Matches(e Exercise) bool {
	if e.UserID != q.UserID {
		return false
	}
	return !e.Date.Before(q.From) && e.Date.Before(q.To)
}

// Bounded reports whether the query carries a result cap.
func (q LogQuery) Bounded() bool {
	return q.Limit > 0
}
