/*
clock.go - Duration math, rounding, and night-hour detection

PURPOSE:
  Pure time arithmetic shared by the hours calculator and the wage engine.
  Every function here is deterministic and side-effect free.

KEY RULES:
  - Worked hours = (clock-out minus clock-in, in minutes) - break minutes,
    clamped at zero, returned as fractional hours.
  - The overtime split is per day: hours past the threshold (default 8)
    are overtime, the rest regular.
  - The night window may wrap midnight: 22 -> 5 means [22:00, 24:00) union
    [00:00, 05:00).
  - Minute rounding is round-half-up to the nearest multiple.

SEE ALSO:
  - hours.go: Applies these rules per record / per shift
  - wage.go:  Supplies the thresholds via the active WageRule
*/
package engine

import (
	"fmt"
	"math"
	"time"
)

// DefaultOvertimeThreshold is the daily hour count past which work counts as
// overtime.
const DefaultOvertimeThreshold = 8.0

// Default night window, hours of day.
const (
	DefaultNightStartHour = 22
	DefaultNightEndHour   = 5
)

// =============================================================================
// WORKED HOURS
// =============================================================================

// WorkingHours computes net worked hours between a clock pair after deducting
// break minutes. The result is clamped at zero when the break exceeds the
// interval. Returns ErrInvalidInterval when clockOut precedes clockIn.
func WorkingHours(clockIn, clockOut time.Time, breakMinutes int) (float64, error) {
	if clockOut.Before(clockIn) {
		return 0, ErrInvalidInterval
	}
	minutes := clockOut.Sub(clockIn).Minutes() - float64(breakMinutes)
	if minutes < 0 {
		minutes = 0
	}
	return minutes / 60.0, nil
}

// OvertimeSplit partitions total daily hours at the threshold. The two parts
// always sum back to the total.
func OvertimeSplit(total, threshold float64) (regular, overtime float64) {
	if total <= threshold {
		return total, 0
	}
	return threshold, total - threshold
}

// =============================================================================
// NIGHT WINDOW
// =============================================================================

// IsNightHour reports whether the instant's hour falls inside the night
// window. When start > end the window wraps midnight.
func IsNightHour(t time.Time, nightStart, nightEnd int) bool {
	h := t.Hour()
	if nightStart > nightEnd {
		return h >= nightStart || h < nightEnd
	}
	return h >= nightStart && h < nightEnd
}

// =============================================================================
// ROUNDING
// =============================================================================

// RoundToNearest rounds minutes to the nearest multiple of granularity,
// half-up. A granularity of zero or less leaves the value unchanged.
func RoundToNearest(minutes, granularity int) int {
	if granularity <= 0 {
		return minutes
	}
	return int(math.Round(float64(minutes)/float64(granularity))) * granularity
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatDuration renders fractional hours as "X時間Y分".
func FormatDuration(hours float64) string {
	totalMinutes := int(math.Round(hours * 60))
	h := totalMinutes / 60
	m := totalMinutes % 60
	return fmt.Sprintf("%d時間%d分", h, m)
}

// ParseClock parses an "HH:MM" wall-clock string onto the given date.
func ParseClock(date time.Time, hhmm string) (time.Time, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("invalid clock time %q: out of range", hhmm)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location()), nil
}
