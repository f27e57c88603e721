package dates

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidReminderSpec is returned for reminder input that is not a known
// weekday name followed by an HH:MM time.
var ErrInvalidReminderSpec = errors.New("invalid reminder spec")

// ReminderSpec is a weekly occurrence: weekday 0 is Monday, 6 is Sunday,
// time of day in the fixed reporting timezone.
type ReminderSpec struct {
	Weekday int
	Hour    int
	Minute  int
}

var weekdayNames = map[string]int{
	"понедельник": 0,
	"вторник":     1,
	"среда":       2,
	"четверг":     3,
	"пятница":     4,
	"суббота":     5,
	"воскресенье": 6,
}

// ParseReminderSpec parses input like "понедельник 09:00". Any deviation
// (unknown weekday, bad time, out-of-range values) yields
// ErrInvalidReminderSpec; callers treat all failures uniformly.
func ParseReminderSpec(text string) (ReminderSpec, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(fields) != 2 {
		return ReminderSpec{}, ErrInvalidReminderSpec
	}

	weekday, ok := weekdayNames[fields[0]]
	if !ok {
		return ReminderSpec{}, ErrInvalidReminderSpec
	}

	hh, mm, ok := strings.Cut(fields[1], ":")
	if !ok {
		return ReminderSpec{}, ErrInvalidReminderSpec
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return ReminderSpec{}, ErrInvalidReminderSpec
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return ReminderSpec{}, ErrInvalidReminderSpec
	}

	return ReminderSpec{Weekday: weekday, Hour: hour, Minute: minute}, nil
}
