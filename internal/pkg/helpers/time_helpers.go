package helpers

import "time"

// DisplayDateLayout renders dates as "DD Mon YYYY", e.g. "04 Mar 2024"
const DisplayDateLayout = "02 Jan 2006"

// FormatDisplayDate formats t in UTC with DisplayDateLayout
func FormatDisplayDate(t time.Time) string {
	return t.UTC().Format(DisplayDateLayout)
}

// StartOfDayUTC truncates t to midnight UTC
func StartOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TrailingDaysStart is the midnight that opens a window of n calendar days ending today
func TrailingDaysStart(now time.Time, n int) time.Time {
	if n < 1 {
		n = 1
	}
	return StartOfDayUTC(now).AddDate(0, 0, -(n - 1))
}
