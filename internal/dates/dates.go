// Package dates holds the pure date arithmetic behind the bot: strict input
// parsing and calendar-aware elapsed breakdowns.
package dates

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "02.01.2006"

// ReportLocation is the fixed reporting timezone: UTC+3, no DST. Parsed
// dates and every "now" live in this zone, so calendar arithmetic never
// straddles a zone boundary.
var ReportLocation = time.FixedZone("MSK", 3*60*60)

var (
	// ErrInvalidDate is returned for input that is not a DD.MM.YYYY date.
	ErrInvalidDate = errors.New("invalid date format")
	// ErrInvalidRange is returned for input that is not two dates joined by '-'.
	ErrInvalidRange = errors.New("invalid date range format")
)

// ParseDate parses a strict DD.MM.YYYY date as midnight in ReportLocation.
func ParseDate(text string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(text), ReportLocation)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseRange parses "DD.MM.YYYY-DD.MM.YYYY". The dash between the two dates
// is the delimiter; surrounding whitespace on either part is ignored.
func ParseRange(text string) (time.Time, time.Time, error) {
	parts := strings.SplitN(text, "-", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	from, err := ParseDate(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	to, err := ParseDate(parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return from, to, nil
}

// Breakdown decomposes a time span. Years/Months/Days come from calendar
// arithmetic (leap-aware), the remaining fields are floor-divided totals of
// the whole span.
type Breakdown struct {
	Years  int
	Months int
	Days   int

	TotalWeeks   int64
	TotalDays    int64
	TotalHours   int64
	TotalMinutes int64
	TotalSeconds int64
}

// Between computes the breakdown from the earlier to the later of the two
// instants; argument order does not matter.
func Between(a, b time.Time) Breakdown {
	if b.Before(a) {
		a, b = b, a
	}

	years, months, days := calendarDiff(a, b)

	seconds := int64(b.Sub(a).Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	totalDays := hours / 24
	weeks := totalDays / 7

	return Breakdown{
		Years:        years,
		Months:       months,
		Days:         days,
		TotalWeeks:   weeks,
		TotalDays:    totalDays,
		TotalHours:   hours,
		TotalMinutes: minutes,
		TotalSeconds: seconds,
	}
}

// calendarDiff returns the difference between from and to (from <= to) as
// whole years, months and leftover days. It anchors at from plus a whole
// number of months (day-of-month clamped to the target month's length) and
// counts the remaining days from there.
func calendarDiff(from, to time.Time) (years, months, days int) {
	totalMonths := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	anchor := addMonthsClamped(from, totalMonths)
	if anchor.After(to) {
		totalMonths--
		anchor = addMonthsClamped(from, totalMonths)
	}
	days = int(to.Sub(anchor).Hours() / 24)
	return totalMonths / 12, totalMonths % 12, days
}

// addMonthsClamped adds n months without the day-of-month overflow of
// AddDate (Jan 31 + 1 month is Feb 28/29 here, not Mar 2/3).
func addMonthsClamped(t time.Time, n int) time.Time {
	year := t.Year()
	month := int(t.Month()) - 1 + n
	year += month / 12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}
	m := time.Month(month + 1)
	day := t.Day()
	if last := daysInMonth(year, m); day > last {
		day = last
	}
	return time.Date(year, m, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
