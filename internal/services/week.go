package services

import "time"

const weekDateLayout = "2006/01/02"

// startOfISOWeek returns the Monday of t's week at midnight.
func startOfISOWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := t.AddDate(0, 0, 1-weekday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// WeekRangeOf formats the Monday-to-Sunday range containing t,
// e.g. "2026/01/12-2026/01/18".
func WeekRangeOf(t time.Time) string {
	monday := startOfISOWeek(t)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(weekDateLayout) + "-" + sunday.Format(weekDateLayout)
}

// WeekNumberOf returns t's ISO 8601 week number.
func WeekNumberOf(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}
