// Package timeutil centralizes time handling for the academy, which operates
// on Lagos time (WAT, UTC+1, no daylight saving). Receipt day prefixes and
// monthly report windows are all derived from this zone so a payment recorded
// at 23:50 local never lands on the wrong day.
package timeutil

import (
	"fmt"
	"time"
)

// LagosTZ is the academy's timezone (West Africa Time, UTC+1).
// A fixed zone avoids depending on the host tzdata.
var LagosTZ = time.FixedZone("WAT", 1*60*60)

// Now returns the current time in Lagos timezone.
func Now() time.Time {
	return time.Now().In(LagosTZ)
}

// ToLocal converts a time to Lagos timezone.
func ToLocal(t time.Time) time.Time {
	return t.In(LagosTZ)
}

// StartOfDay returns midnight of the given day in Lagos timezone.
func StartOfDay(t time.Time) time.Time {
	local := t.In(LagosTZ)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, LagosTZ)
}

// EndOfDay returns the last nanosecond of the given day in Lagos timezone.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfMonth returns midnight on the first day of the month.
func StartOfMonth(t time.Time) time.Time {
	local := t.In(LagosTZ)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, LagosTZ)
}

// EndOfMonth returns the last nanosecond of the month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// StartOfPreviousMonth returns midnight on the first day of the month before t.
func StartOfPreviousMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, -1, 0)
}

// SameDay reports whether two times fall on the same Lagos calendar day.
func SameDay(a, b time.Time) bool {
	al, bl := a.In(LagosTZ), b.In(LagosTZ)
	return al.Year() == bl.Year() && al.YearDay() == bl.YearDay()
}

// IsToday reports whether t falls on the current Lagos calendar day.
func IsToday(t time.Time) bool {
	return SameDay(t, Now())
}

// DayStamp formats a time as YYYYMMDD in Lagos timezone. Receipt numbers
// embed this stamp.
func DayStamp(t time.Time) string {
	return t.In(LagosTZ).Format("20060102")
}

// MonthKey formats a time as YYYY-MM in Lagos timezone, the key used by the
// monthly revenue and trend reports.
func MonthKey(t time.Time) string {
	return t.In(LagosTZ).Format("2006-01")
}

// FormatDate formats a time as YYYY-MM-DD in Lagos timezone.
func FormatDate(t time.Time) string {
	return t.In(LagosTZ).Format("2006-01-02")
}

// FormatDateTime formats a time for display on documents.
func FormatDateTime(t time.Time) string {
	return t.In(LagosTZ).Format("2006-01-02 15:04:05")
}

// ParseDate parses a YYYY-MM-DD string in Lagos timezone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, LagosTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
