// Package dateutil canonicalizes scheduling timestamps to day granularity.
// All practice scheduling compares calendar days, never instants, so every
// date written into a scheduled session passes through Normalize first.
// The UTC calendar is the single reference; mixing zones would make
// "due today" depend on where the binary runs.
package dateutil

import "time"

// Normalize strips the time-of-day component, returning midnight UTC of the
// same calendar day. Idempotent: Normalize(Normalize(t)) == Normalize(t).
func Normalize(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// Today returns the current day, normalized.
func Today() time.Time {
	return Normalize(time.Now())
}

// IsToday reports whether t falls on the current UTC calendar day.
func IsToday(t time.Time) bool {
	return SameDay(t, time.Now())
}

// AddDays returns t shifted by n whole days, normalized.
func AddDays(t time.Time, n int) time.Time {
	return Normalize(t).AddDate(0, 0, n)
}
