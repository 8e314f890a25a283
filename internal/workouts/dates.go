package workouts

import "time"

const dateLayout = "2006-01-02"

// ParseDate parses a calendar date in the given location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, loc)
}

// DayBounds returns the half-open local-day window [start, end) around t.
// The half-open end excludes the next day's midnight instant, so a workout
// logged exactly at midnight belongs to the following day only.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(t.In(loc).Year(), t.In(loc).Month(), t.In(loc).Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// FormatDate renders a timestamp as a calendar date display string.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDayHeading renders the long display form used in day listings.
func FormatDayHeading(t time.Time) string {
	return t.Format("Monday, Jan 2, 2006")
}
