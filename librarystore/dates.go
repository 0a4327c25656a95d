package librarystore

import "time"

// DateLayout is the calendar date layout used for display and JSON output.
const DateLayout = "2006-01-02"

// DateOf strips the time of day from t and returns the calendar date at midnight UTC.
// The calendar date is taken in t's own location.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date.
func Today() time.Time {
	return DateOf(time.Now())
}

// DaysBetween returns the number of calendar days from 'from' to 'to' (negative if 'to' is earlier).
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// DatePtr returns a pointer to the calendar date of t.
func DatePtr(t time.Time) *time.Time {
	d := DateOf(t)
	return &d
}
