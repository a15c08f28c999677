package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The time boundary for hours and payroll computation
// =============================================================================

// Period is a closed date range [Start, End]. Hours and payroll are ALWAYS
// computed for a period, not at a point in time. Both bounds are normalized
// to midnight; intra-day times live on TimeRecord and Shift, not here.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a period from two dates. Returns ErrInvalidInterval when
// end precedes start.
func NewPeriod(start, end time.Time) (Period, error) {
	start = Midnight(start)
	end = Midnight(end)
	if end.Before(start) {
		return Period{}, ErrInvalidInterval
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if the instant falls inside [Start, End] at day
// granularity.
func (p Period) Contains(t time.Time) bool {
	d := Midnight(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// ContainsDate is Contains for a YYYY-MM-DD string. Unparseable dates are
// outside every period.
func (p Period) ContainsDate(date string) bool {
	t, err := ParseDate(date, p.Start.Location())
	if err != nil {
		return false
	}
	return p.Contains(t)
}

// Days returns every day in the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for cur := p.Start; !cur.After(p.End); cur = cur.AddDate(0, 0, 1) {
		days = append(days, cur)
	}
	return days
}

// Weekdays returns the distinct weekdays the period touches. Periods of seven
// days or more touch all of them.
func (p Period) Weekdays() []time.Weekday {
	seen := map[time.Weekday]bool{}
	var out []time.Weekday
	for i, cur := 0, p.Start; i < 7 && !cur.After(p.End); i, cur = i+1, cur.AddDate(0, 0, 1) {
		if !seen[cur.Weekday()] {
			seen[cur.Weekday()] = true
			out = append(out, cur.Weekday())
		}
	}
	return out
}

// String returns a string representation of the period.
func (p Period) String() string {
	return fmt.Sprintf("[%s, %s]", DateKey(p.Start), DateKey(p.End))
}

// =============================================================================
// PERIOD CONSTRUCTORS
// =============================================================================

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, -1)
	return Period{Start: start, End: end}
}

// WeekOf returns the Sunday-to-Saturday week containing t.
func WeekOf(t time.Time) Period {
	start := Midnight(t).AddDate(0, 0, -int(t.Weekday()))
	return Period{Start: start, End: start.AddDate(0, 0, 6)}
}

// LastNDays returns the period of the n days ending at t, inclusive.
func LastNDays(t time.Time, n int) Period {
	end := Midnight(t)
	return Period{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// =============================================================================
// DATE HELPERS
// =============================================================================

const dateLayout = "2006-01-02"

// DateKey formats an instant as its YYYY-MM-DD grouping key.
func DateKey(t time.Time) string { return t.Format(dateLayout) }

// ParseDate parses a YYYY-MM-DD string in the given location.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(dateLayout, date, loc)
}

// Midnight truncates an instant to the start of its day, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsWeekend reports whether the instant falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
