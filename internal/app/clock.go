package app

import (
	"math"
	"time"
)

// Clock supplies "now" and the location that defines calendar days.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock returns a Clock on the wall clock in loc (time.Local when nil).
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// today returns midnight of the current calendar day.
func (c Clock) today() time.Time {
	return startOfDay(c.now())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// daysUntil is ceil((due - today) / 24h), measured on wall-clock dates so that a
// DST shift inside the interval does not add or drop a day.
func daysUntil(today, due time.Time) int {
	due = due.In(today.Location())
	ty, tm, td := today.Date()
	from := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := due.Date()
	to := time.Date(dy, dm, dd, due.Hour(), due.Minute(), due.Second(), due.Nanosecond(), time.UTC)
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
