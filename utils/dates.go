package utils

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return DateOnly(t), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateOnly(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
}

// Overlaps reports whether [aIn, aOut) and [bIn, bOut) intersect.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// EffectiveCheckout bills overstays through today and never shortens a stay.
func EffectiveCheckout(today, bookedCheckOut time.Time) time.Time {
	today, bookedCheckOut = DateOnly(today), DateOnly(bookedCheckOut)
	if today.After(bookedCheckOut) {
		return today
	}
	return bookedCheckOut
}

// StayDays is at least one.
func StayDays(checkIn, effectiveCheckout time.Time) int {
	if d := DaysBetween(checkIn, effectiveCheckout); d > 1 {
		return d
	}
	return 1
}
