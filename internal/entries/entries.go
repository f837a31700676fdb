// Package entries buckets date-carrying records (tasks, exercises, diet
// items) by calendar day.
package entries

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"synergy/internal/calendar"
)

// Entry is a record with a numeric id and a stored date string, either a
// day-only "YYYY-MM-DD" or a full ISO-8601 timestamp.
type Entry interface {
	EntryID() int64
	EntryDate() string
}

// KeyOfDate returns the day key of a stored date. Day-only dates are taken
// as written; timestamps are read in loc (nil means time.Local) first.
func KeyOfDate(date string, loc *time.Location) (calendar.DayKey, error) {
	if k, err := calendar.ParseKey(date); err == nil {
		return k, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, date); err == nil {
		return calendar.KeyOf(t.In(loc)), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", date, loc); err == nil {
		return calendar.KeyOf(t), nil
	}
	return calendar.DayKey{}, fmt.Errorf("unrecognised date %q", date)
}

// OnDay returns the entries dated on key, in their original order. Entries
// with an unreadable date match no day.
func OnDay[T Entry](items []T, key calendar.DayKey, loc *time.Location) []T {
	out := []T{}
	for _, it := range items {
		if k, err := KeyOfDate(it.EntryDate(), loc); err == nil && k == key {
			out = append(out, it)
		}
	}
	return out
}

// InDays returns the entries dated on any of keys.
func InDays[T Entry](items []T, keys []calendar.DayKey, loc *time.Location) []T {
	want := make(map[calendar.DayKey]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	out := []T{}
	for _, it := range items {
		if k, err := KeyOfDate(it.EntryDate(), loc); err == nil && want[k] {
			out = append(out, it)
		}
	}
	return out
}

// InWeek returns the entries in the Sunday-start week containing key.
func InWeek[T Entry](items []T, key calendar.DayKey, loc *time.Location) []T {
	return InDays(items, calendar.WeekKeys(key.Time(loc)), loc)
}

// ByDay groups entries by day key.
func ByDay[T Entry](items []T, loc *time.Location) map[calendar.DayKey][]T {
	out := make(map[calendar.DayKey][]T)
	for _, it := range items {
		if k, err := KeyOfDate(it.EntryDate(), loc); err == nil {
			out[k] = append(out[k], it)
		}
	}
	return out
}

// MostRecentFirst returns a copy of items sorted by id, newest first.
func MostRecentFirst[T Entry](items []T) []T {
	out := append([]T{}, items...)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(b.EntryID(), a.EntryID())
	})
	return out
}
