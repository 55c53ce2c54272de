package dateutil

import (
	"math"
	"time"
)

// DayStart truncates a timestamp to midnight in the given location. DPD and
// day-lock boundaries are always computed in the business's local timezone so
// a payment near midnight UTC cannot shift a day.
func DayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween returns the number of whole calendar days from a to b in the
// given location. Negative when b is before a. Rounding absorbs the 23- and
// 25-hour days a DST transition produces, so the count stays in calendar days.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	start := DayStart(a, loc)
	end := DayStart(b, loc)
	return int(math.Round(end.Sub(start).Hours() / 24))
}
