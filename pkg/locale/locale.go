// Package locale renders booking dates the way the Russian-speaking operator
// reads them in the spreadsheet and in chat.
package locale

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	displayDate     = "02.01.2006"
	displayDateTime = "02.01.2006, 15:04:05"
	displayShort    = "02.01.2006, 15:04"
)

var genitiveMonths = [...]string{
	time.January:   "января",
	time.February:  "февраля",
	time.March:     "марта",
	time.April:     "апреля",
	time.May:       "мая",
	time.June:      "июня",
	time.July:      "июля",
	time.August:    "августа",
	time.September: "сентября",
	time.October:   "октября",
	time.November:  "ноября",
	time.December:  "декабря",
}

// ParseDate accepts a calendar date (YYYY-MM-DD, interpreted in loc) or an
// RFC 3339 timestamp.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", value)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatDate renders 15.12.2025.
func FormatDate(t time.Time) string {
	return t.Format(displayDate)
}

// FormatDateTime renders 15.12.2025, 14:30:00.
func FormatDateTime(t time.Time) string {
	return t.Format(displayDateTime)
}

// FormatDateTimeShort renders 15.12.2025, 14:30.
func FormatDateTimeShort(t time.Time) string {
	return t.Format(displayShort)
}

// FormatDateLong renders 15 декабря 2025 г.
func FormatDateLong(t time.Time) string {
	return fmt.Sprintf("%d %s %d г.", t.Day(), genitiveMonths[t.Month()], t.Year())
}

// DisplayDate renders a submitted date string for humans, falling back to
// the raw value when it cannot be parsed.
func DisplayDate(value string, loc *time.Location, format func(time.Time) string) string {
	t, err := ParseDate(value, loc)
	if err != nil {
		return value
	}
	return format(t)
}
