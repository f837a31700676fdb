package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2000, time.February, 29},
		{1900, time.February, 28},
		{2024, time.January, 31},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DaysInMonth(tc.year, tc.month), "%d-%02d", tc.year, tc.month)
	}
}

func TestDaysInMonthMatchesGregorian(t *testing.T) {
	for year := 1899; year <= 2101; year++ {
		for m := time.January; m <= time.December; m++ {
			want := 0
			for d := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC); d.Month() == m; d = d.AddDate(0, 0, 1) {
				want++
			}
			require.Equal(t, want, DaysInMonth(year, m), "%d-%02d", year, m)
		}
	}
}

func TestFirstWeekday(t *testing.T) {
	assert.Equal(t, time.Monday, FirstWeekday(2024, time.January))
	assert.Equal(t, 1, int(FirstWeekday(2024, time.January)))
	assert.Equal(t, time.Friday, FirstWeekday(2024, time.March))
	assert.Equal(t, time.Sunday, FirstWeekday(2023, time.January))
}

func TestMonthGrid(t *testing.T) {
	grid := MonthGrid(2024, time.March)
	require.Len(t, grid, 5+31)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 1, 2}, grid[:7])
	assert.Equal(t, 31, grid[len(grid)-1])

	grid = MonthGrid(2023, time.January)
	assert.Equal(t, 1, grid[0], "month starting on Sunday has no blanks")
}

func TestWeekContaining(t *testing.T) {
	wed := time.Date(2024, time.March, 6, 15, 30, 0, 0, time.UTC)
	week := WeekContaining(wed)
	require.Len(t, week, 7)
	assert.Equal(t, time.Sunday, week[0].Weekday())
	assert.Equal(t, DayKey{2024, time.March, 3}, KeyOf(week[0]))
	assert.Equal(t, DayKey{2024, time.March, 9}, KeyOf(week[6]))
	assert.Equal(t, 15, week[3].Hour())

	// Week spanning a year boundary.
	keys := WeekKeys(time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, DayKey{2024, time.December, 29}, keys[0])
	assert.Equal(t, DayKey{2025, time.January, 4}, keys[6])
}

func TestKeyOfIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 1, 23, 59, 59, 0, time.UTC)
	assert.True(t, IsSameDay(a, b))
	assert.False(t, IsSameDay(a, b.Add(time.Second)))
	assert.Equal(t, "2024-03-01", KeyOf(a).String())
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("2024-03-07")
	require.NoError(t, err)
	assert.Equal(t, DayKey{2024, time.March, 7}, k)

	_, err = ParseKey("2024-3-7")
	assert.Error(t, err)
}

func TestDayKeyOrdering(t *testing.T) {
	assert.True(t, DayKey{2023, time.December, 31}.Before(DayKey{2024, time.January, 1}))
	assert.True(t, DayKey{2024, time.January, 31}.Before(DayKey{2024, time.February, 1}))
	assert.False(t, DayKey{2024, time.February, 1}.Before(DayKey{2024, time.February, 1}))
	assert.Equal(t, DayKey{2024, time.March, 1}, DayKey{2024, time.February, 28}.AddDays(2))
}

func TestIsTodayReadsClockEachCall(t *testing.T) {
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	clock := ClockFunc(func() time.Time { return now })

	d := time.Date(2024, time.March, 1, 22, 0, 0, 0, time.UTC)
	assert.True(t, IsToday(d, clock))

	now = now.AddDate(0, 0, 1)
	assert.False(t, IsToday(d, clock))
}

func TestMonthNavigation(t *testing.T) {
	m := Month{Year: 2024, Month: time.January}
	for i := 0; i < 12; i++ {
		m = m.Next()
	}
	assert.Equal(t, Month{Year: 2025, Month: time.January}, m)

	assert.Equal(t, Month{Year: 2023, Month: time.December}, Month{Year: 2024, Month: time.January}.Prev())
	assert.Equal(t, Month{Year: 2025, Month: time.January}, Month{Year: 2024, Month: time.December}.Next())
	assert.Equal(t, Month{Year: 2021, Month: time.November}, Month{Year: 2024, Month: time.March}.Add(-28))
}

func TestMonthClampDay(t *testing.T) {
	feb := Month{Year: 2024, Month: time.February}
	assert.Equal(t, DayKey{2024, time.February, 29}, feb.ClampDay(31))
	assert.Equal(t, DayKey{2024, time.February, 31}, feb.Key(31), "Key never clamps")
	assert.Equal(t, DayKey{2024, time.February, 1}, feb.ClampDay(0))
	assert.True(t, feb.Contains(DayKey{2024, time.February, 10}))
	assert.False(t, feb.Contains(DayKey{2023, time.February, 10}))
}
