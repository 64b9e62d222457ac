package birthday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		month time.Month
		day   int
		want  bool
	}{
		{"wraps december into january", date(2024, 12, 28), time.January, 2, true},
		{"day already passed this month", date(2024, 12, 28), time.December, 20, false},
		{"inside a same-month window", date(2024, 6, 1), time.June, 5, true},
		{"beyond the window", date(2024, 6, 1), time.July, 1, false},
		{"today itself", date(2024, 3, 10), time.March, 10, true},
		{"last day of window", date(2024, 3, 10), time.March, 17, true},
		{"window crosses into next month", date(2024, 4, 28), time.May, 5, true},
		{"one day past crossing window", date(2024, 4, 28), time.May, 6, false},
		{"earlier day of a same-month window", date(2024, 3, 10), time.March, 9, true},
		{"later day of a same-month window", date(2024, 3, 10), time.March, 30, true},
		{"yesterday when the window crosses a month", date(2024, 4, 28), time.April, 27, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.today, tt.month, tt.day))
		})
	}
}

// Every day from Dec 25 to Dec 31 must reach into January with the right
// end day and still accept the rest of December.
func TestMatchesYearEndBoundary(t *testing.T) {
	for d := 25; d <= 31; d++ {
		today := date(2024, time.December, d)
		w := NewWindow(today)
		endDay := d + WindowDays - 31

		assert.Equal(t, 2025, w.End.Year(), "today=%d", d)
		assert.Equal(t, time.January, w.End.Month(), "today=%d", d)
		assert.Equal(t, endDay, w.End.Day(), "today=%d", d)

		assert.True(t, Matches(today, time.December, d), "today itself, today=%d", d)
		assert.True(t, Matches(today, time.December, 31), "dec 31, today=%d", d)
		assert.True(t, Matches(today, time.January, 1), "jan 1, today=%d", d)
		assert.True(t, Matches(today, time.January, endDay), "window end, today=%d", d)
		assert.False(t, Matches(today, time.January, endDay+1), "past window end, today=%d", d)
		assert.False(t, Matches(today, time.December, d-1), "yesterday, today=%d", d)
		assert.False(t, Matches(today, time.November, 30), "previous month, today=%d", d)
	}
}

// Dec 24 + 7 is Dec 31: the window stays in December and January is out.
func TestMatchesDecember24StaysInYear(t *testing.T) {
	today := date(2024, time.December, 24)
	assert.Equal(t, date(2024, time.December, 31), NewWindow(today).End)
	assert.True(t, Matches(today, time.December, 31))
	assert.False(t, Matches(today, time.January, 1))
}

func TestMatchesLeapYear(t *testing.T) {
	t.Run("feb 29 birthday seen from a leap year", func(t *testing.T) {
		assert.True(t, Matches(date(2024, time.February, 25), time.February, 29))
	})
	t.Run("window end rolls over feb 29 in a leap year", func(t *testing.T) {
		w := NewWindow(date(2024, time.February, 25))
		assert.Equal(t, date(2024, time.March, 3), w.End)
	})
	t.Run("window end skips feb 29 in a common year", func(t *testing.T) {
		w := NewWindow(date(2023, time.February, 25))
		assert.Equal(t, date(2023, time.March, 4), w.End)
		assert.True(t, Matches(date(2023, time.February, 25), time.March, 4))
	})
	t.Run("feb 29 birthday seen from a common year", func(t *testing.T) {
		// no Feb 29 exists in 2023 but the month/day clause still accepts it
		assert.True(t, Matches(date(2023, time.February, 25), time.February, 29))
	})
}

// A window contained in one month accepts every later day of that month
// through the start clause.
func TestMatchesSameMonthWindowAcceptsRestOfMonth(t *testing.T) {
	today := date(2024, time.June, 1)
	assert.True(t, Matches(today, time.June, 30))
	assert.True(t, Matches(today, time.June, 8))
	assert.False(t, Matches(today, time.May, 31))
}

func TestMatchesIgnoresTimeOfDayAndYear(t *testing.T) {
	lateEvening := time.Date(2024, time.December, 28, 23, 59, 59, 0, time.UTC)
	assert.True(t, Matches(lateEvening, time.January, 4))
	assert.False(t, Matches(lateEvening, time.January, 5))

	assert.True(t, MatchesDate(date(2024, time.December, 28), date(1987, time.January, 2)))
	assert.False(t, MatchesDate(date(2024, time.December, 28), date(1999, time.December, 27)))
}
