// Package calendar maps dates to canonical day keys and derives the week and
// month sequences the planner views are built from. Months are time.Month
// values (January == 1); weekday indices follow time.Weekday (Sunday == 0).
package calendar

import (
	"fmt"
	"time"
)

// DayKey identifies a calendar day by its year, month and day-of-month only.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// KeyOf extracts the day key from t using the calendar fields t already
// carries. No timezone conversion happens here.
func KeyOf(t time.Time) DayKey {
	y, m, d := t.Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// ParseKey parses a "YYYY-MM-DD" string.
func ParseKey(s string) (DayKey, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return DayKey{}, fmt.Errorf("parse day key %q: %w", s, err)
	}
	return KeyOf(t), nil
}

// String formats the key as "YYYY-MM-DD".
func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// Before reports whether k is an earlier day than o, comparing the full
// (year, month, day) triple.
func (k DayKey) Before(o DayKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	if k.Month != o.Month {
		return k.Month < o.Month
	}
	return k.Day < o.Day
}

// Time returns midnight of the day in loc. A nil loc means time.Local.
func (k DayKey) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the key n calendar days after k (n may be negative).
func (k DayKey) AddDays(n int) DayKey {
	return KeyOf(time.Date(k.Year, k.Month, k.Day+n, 12, 0, 0, 0, time.UTC))
}

// DaysInMonth returns the number of days in the month, taking day 0 of the
// following month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of the first day of the month.
func FirstWeekday(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}

// WeekContaining returns the seven dates of the Sunday-start week containing
// t. Each date keeps t's clock time and location.
func WeekContaining(t time.Time) []time.Time {
	start := t.AddDate(0, 0, -int(t.Weekday()))
	week := make([]time.Time, 7)
	for i := range week {
		week[i] = start.AddDate(0, 0, i)
	}
	return week
}

// WeekKeys is WeekContaining expressed as day keys.
func WeekKeys(t time.Time) []DayKey {
	week := WeekContaining(t)
	keys := make([]DayKey, len(week))
	for i, d := range week {
		keys[i] = KeyOf(d)
	}
	return keys
}

// MonthGrid returns the cells of a month calendar: one zero (blank) per
// weekday before the first, then the day numbers 1..DaysInMonth.
func MonthGrid(year int, month time.Month) []int {
	lead := int(FirstWeekday(year, month))
	days := DaysInMonth(year, month)
	grid := make([]int, lead, lead+days)
	for d := 1; d <= days; d++ {
		grid = append(grid, d)
	}
	return grid
}

// IsSameDay reports whether a and b fall on the same day key.
func IsSameDay(a, b time.Time) bool {
	return KeyOf(a) == KeyOf(b)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock on every call.
var SystemClock Clock = ClockFunc(time.Now)

// IsToday reports whether t falls on the current day according to clock,
// read at call time. A nil clock means SystemClock.
func IsToday(t time.Time, clock Clock) bool {
	if clock == nil {
		clock = SystemClock
	}
	return KeyOf(clock.Now().In(t.Location())) == KeyOf(t)
}
