package calendar

import "time"

// Month is a (year, month) cursor used for month-by-month navigation.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Add moves the cursor n months, rolling over year boundaries in both
// directions.
func (m Month) Add(n int) Month {
	idx := m.Year*12 + int(m.Month-1) + n
	y, mo := idx/12, idx%12
	if mo < 0 {
		mo += 12
		y--
	}
	return Month{Year: y, Month: time.Month(mo + 1)}
}

// Next is Add(1).
func (m Month) Next() Month { return m.Add(1) }

// Prev is Add(-1).
func (m Month) Prev() Month { return m.Add(-1) }

// Days is DaysInMonth for the cursor.
func (m Month) Days() int { return DaysInMonth(m.Year, m.Month) }

// Grid is MonthGrid for the cursor.
func (m Month) Grid() []int { return MonthGrid(m.Year, m.Month) }

// Contains reports whether k lies in the month.
func (m Month) Contains(k DayKey) bool {
	return k.Year == m.Year && k.Month == m.Month
}

// Key returns the day key for day d of the month. The day is not checked
// against the month length; callers decide how to treat overflow.
func (m Month) Key(d int) DayKey {
	return DayKey{Year: m.Year, Month: m.Month, Day: d}
}

// ClampDay returns the key for day d of the month, pulled back to the last
// valid day when d exceeds the month length and up to 1 when d < 1.
func (m Month) ClampDay(d int) DayKey {
	if n := m.Days(); d > n {
		d = n
	}
	if d < 1 {
		d = 1
	}
	return m.Key(d)
}
