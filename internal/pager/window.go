package pager

import "time"

// Window is a half-open [Start, End) range of unix seconds bounding
// one page request.
type Window struct {
	Start int64
	End   int64
}

// All week arithmetic is pinned to UTC so that windows are reproducible
// no matter where the daemon runs. A "week" starts Monday 00:00.

// StartOfWeek returns Monday 00:00 UTC of t's week.
func StartOfWeek(t time.Time) time.Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// Weekday is Sunday-based; shift so Monday maps to offset 0.
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

func PlusWeeks(t time.Time, weeks int) time.Time {
	return t.AddDate(0, 0, 7*weeks)
}

func MinusWeeks(t time.Time, weeks int) time.Time {
	return PlusWeeks(t, -weeks)
}
