package draws

import "time"

// IsDrawDay reports whether d falls on a EuroMillions draw day (Tuesday or Friday).
func IsDrawDay(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Tuesday || wd == time.Friday
}

// NextDrawDate returns from itself when it is a draw day, otherwise the next one.
// The result is a calendar date at UTC midnight.
func NextDrawDate(from time.Time) time.Time {
	cursor := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for !IsDrawDay(cursor) {
		cursor = cursor.AddDate(0, 0, 1)
	}
	return cursor
}

// UpcomingDrawDates returns the next weeks*2 draw dates starting at from.
// weeks below 1 is treated as 1.
func UpcomingDrawDates(from time.Time, weeks int) []time.Time {
	total := max(1, weeks) * 2
	out := make([]time.Time, 0, total)
	cursor := NextDrawDate(from)
	for len(out) < total {
		if IsDrawDay(cursor) {
			out = append(out, cursor)
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return out
}

// FormatLabel renders a draw date the way tickets display it, e.g. "Tue 03 Mar 2026".
func FormatLabel(d time.Time) string {
	return d.Format("Mon 02 Jan 2006")
}
