package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintai/attendance-engine/engine"
)

func TestNewPeriod_EndBeforeStart_Rejected(t *testing.T) {
	_, err := engine.NewPeriod(at(0, 0).AddDate(0, 0, 5), at(0, 0))
	assert.ErrorIs(t, err, engine.ErrInvalidInterval)
}

func TestMonthOf_CoversWholeMonth(t *testing.T) {
	// GIVEN: Any instant inside March 2025
	p := engine.MonthOf(time.Date(2025, time.March, 15, 13, 45, 0, 0, time.UTC))

	// THEN: The period spans March 1 through March 31
	assert.Equal(t, "2025-03-01", engine.DateKey(p.Start))
	assert.Equal(t, "2025-03-31", engine.DateKey(p.End))
	assert.Len(t, p.Days(), 31)
	assert.True(t, p.ContainsDate("2025-03-31"))
	assert.False(t, p.ContainsDate("2025-04-01"))
}

func TestWeekOf_StartsSunday(t *testing.T) {
	// GIVEN: Wednesday 2025-03-12
	p := engine.WeekOf(time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC))

	// THEN: Sunday 2025-03-09 through Saturday 2025-03-15
	assert.Equal(t, "2025-03-09", engine.DateKey(p.Start))
	assert.Equal(t, "2025-03-15", engine.DateKey(p.End))
}

func TestLastNDays(t *testing.T) {
	p := engine.LastNDays(time.Date(2025, time.March, 10, 23, 0, 0, 0, time.UTC), 7)
	assert.Equal(t, "2025-03-04", engine.DateKey(p.Start))
	assert.Equal(t, "2025-03-10", engine.DateKey(p.End))
	assert.Len(t, p.Days(), 7)
}

func TestPeriod_Weekdays(t *testing.T) {
	// A two-day period touches exactly its two weekdays.
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC) // Monday
	p, err := engine.NewPeriod(start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []time.Weekday{time.Monday, time.Tuesday}, p.Weekdays())

	// A full month touches all seven.
	assert.Len(t, engine.MonthOf(start).Weekdays(), 7)
}
