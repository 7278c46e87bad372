// Package clock supplies "today" to the lifecycle code so tests can pin it.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real is the wall clock.
func Real() Clock { return realClock{} }

// Fixed always returns t.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Date builds a civil date at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time-of-day part, keeping the calendar date of t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Today is the calendar date of c.Now().
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
