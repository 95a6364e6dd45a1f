package domain

import "time"

// User is a named owner of exercise records.
type User struct {
	ID       string
	Username string
}

// Exercise is a single logged workout. Date is always a canonical storage date.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    float64
	Date        time.Time
}

// LogEntry is the projection of an exercise returned by log queries.
type LogEntry struct {
	Description string
	Duration    float64
	Date        time.Time
}

// LoggedExercise is the result of logging an exercise, paired with its owner.
type LoggedExercise struct {
	User     User
	Exercise Exercise
}

// ExerciseLog is the shaped result of a log query. User is nil when the id did not resolve.
type ExerciseLog struct {
	User  *User
	Count int
	Log   []LogEntry
}
