/*
hours.go - Event lists to HourBucket

PURPOSE:
  Converts a homogeneous list of attendance events (all TimeRecords, or all
  Shifts) for ONE employee over a period into an HourBucket: regular,
  overtime, night and holiday hours plus attendance-quality counters.

RULES:
  - Records are grouped by date; each date contributes at most once, using
    its first record carrying a full clock pair.
  - Rounding (per the active wage rule) is applied to worked MINUTES before
    the division into hours.
  - The 8-hour overtime split happens per day, not over the period total.
  - The night overlay is decided by the clock-in hour alone: a day whose
    clock-in falls inside the night window contributes its full hours to
    the Night overlay.
  - A date whose records all dangle (clock-in without clock-out, or the
    reverse) contributes ZERO hours and one MissingPairError anomaly. It
    never aborts the computation.
  - Late = clock-in hour strictly past the expected start hour.
    Early leave = clock-out hour strictly before the expected end hour.
    Both are hour-granularity on purpose: 09:59 is not late, 10:00 is.

SEE ALSO:
  - clock.go: The primitive rules applied here
  - wage.go:  Prices the resulting bucket
*/
package engine

import (
	"sort"
	"time"
)

// =============================================================================
// OPTIONS
// =============================================================================

// CalcOptions carries the thresholds the hours calculator needs. The hour
// fields are pointers so midnight (0) stays distinct from "not configured":
// nil falls back to the default noted on each, a pointed-to value is taken
// as-is, and an equal night start/end pair disables the night overlay.
type CalcOptions struct {
	OvertimeThreshold float64 // hours per day, default 8
	RoundingMinutes   int     // 0 = no rounding
	NightStartHour    *int    // nil = 22
	NightEndHour      *int    // nil = 5
	ExpectedStartHour *int    // lateness boundary, nil = 9
	ExpectedEndHour   *int    // early-leave boundary, nil = 18

	// TreatWeekendAsHoliday adds weekend dates to the Holiday overlay on
	// the actual-records path, where no shift type is available.
	TreatWeekendAsHoliday bool

	// Location resolves YYYY-MM-DD date keys. Nil = UTC.
	Location *time.Location
}

// OptionsFromRule derives calculator options from the active wage rule. The
// rule's night window is explicit configuration, so it is passed through
// even at 0/0 (which disables the overlay).
func OptionsFromRule(rule WageRule, loc *time.Location) CalcOptions {
	return CalcOptions{
		OvertimeThreshold: DefaultOvertimeThreshold,
		RoundingMinutes:   rule.RoundingMinutes,
		NightStartHour:    &rule.NightStartHour,
		NightEndHour:      &rule.NightEndHour,
		Location:          loc,
	}
}

func (o CalcOptions) withDefaults() CalcOptions {
	if o.OvertimeThreshold == 0 {
		o.OvertimeThreshold = DefaultOvertimeThreshold
	}
	if o.NightStartHour == nil {
		o.NightStartHour = hourOf(DefaultNightStartHour)
	}
	if o.NightEndHour == nil {
		o.NightEndHour = hourOf(DefaultNightEndHour)
	}
	if o.ExpectedStartHour == nil {
		o.ExpectedStartHour = hourOf(9)
	}
	if o.ExpectedEndHour == nil {
		o.ExpectedEndHour = hourOf(18)
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

func hourOf(h int) *int { return &h }

// =============================================================================
// ACTUAL PATH - TimeRecords
// =============================================================================

// HoursFromRecords computes the bucket for one employee's actual clock
// records. The input may arrive in any order; still-open records (no
// clock-out yet, on break) are dangling pairs and count as anomalies.
func HoursFromRecords(records []TimeRecord, opts CalcOptions) HourBucket {
	opts = opts.withDefaults()
	var bucket HourBucket

	byDate := map[string][]TimeRecord{}
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	for _, date := range sortedKeys(byDate) {
		dayRecords := byDate[date]

		rec, found := firstPaired(dayRecords)
		if !found {
			bucket.Anomalies = append(bucket.Anomalies, danglingError(dayRecords[0]))
			continue
		}

		hours := netHours(*rec.ClockIn, *rec.ClockOut, rec.BreakDuration, opts.RoundingMinutes)
		if hours < 0 {
			// Inverted pair. Same treatment as a dangling record: zero
			// contribution, surfaced as an anomaly.
			bucket.Anomalies = append(bucket.Anomalies, danglingError(rec))
			continue
		}

		addDay(&bucket, hours, *rec.ClockIn, opts)

		if rec.ClockIn.Hour() > *opts.ExpectedStartHour {
			bucket.LateDays++
		}
		if rec.ClockOut.Hour() < *opts.ExpectedEndHour {
			bucket.EarlyLeaveDays++
		}
		if opts.TreatWeekendAsHoliday && IsWeekend(*rec.ClockIn) {
			bucket.Holiday += hours
		}
	}

	return bucket
}

// firstPaired returns the day's first record with a full clock pair.
func firstPaired(dayRecords []TimeRecord) (TimeRecord, bool) {
	for _, r := range dayRecords {
		if r.HasPair() {
			return r, true
		}
	}
	return TimeRecord{}, false
}

func danglingError(r TimeRecord) MissingPairError {
	return MissingPairError{
		EmployeeID:  r.EmployeeID,
		Date:        r.Date,
		HasClockIn:  r.ClockIn != nil,
		HasClockOut: r.ClockOut != nil,
	}
}

// =============================================================================
// PLANNED PATH - Shifts
// =============================================================================

// HoursFromShifts computes the bucket for one employee's planned shifts.
// Cancelled shifts are skipped. Shifts typed holiday feed the Holiday
// overlay. A shift whose times don't parse counts as an anomaly.
func HoursFromShifts(shifts []Shift, opts CalcOptions) HourBucket {
	opts = opts.withDefaults()
	var bucket HourBucket

	byDate := map[string][]Shift{}
	for _, s := range shifts {
		if s.Status == ShiftCancelled {
			continue
		}
		byDate[s.Date] = append(byDate[s.Date], s)
	}

	for _, date := range sortedKeys(byDate) {
		s := byDate[date][0]

		day, err := ParseDate(s.Date, opts.Location)
		if err != nil {
			bucket.Anomalies = append(bucket.Anomalies, shiftAnomaly(s))
			continue
		}
		start, err := ParseClock(day, s.StartTime)
		if err != nil {
			bucket.Anomalies = append(bucket.Anomalies, shiftAnomaly(s))
			continue
		}
		end, err := ParseClock(day, s.EndTime)
		if err != nil {
			bucket.Anomalies = append(bucket.Anomalies, shiftAnomaly(s))
			continue
		}
		if end.Before(start) {
			// Overnight shift: the end belongs to the next day.
			end = end.AddDate(0, 0, 1)
		}

		hours := netHours(start, end, s.BreakDuration, opts.RoundingMinutes)
		if hours < 0 {
			hours = 0
		}

		addDay(&bucket, hours, start, opts)

		if start.Hour() > *opts.ExpectedStartHour {
			bucket.LateDays++
		}
		if end.Hour() < *opts.ExpectedEndHour && end.Day() == start.Day() {
			bucket.EarlyLeaveDays++
		}
		if s.Type == ShiftHoliday {
			bucket.Holiday += hours
		}
	}

	return bucket
}

func shiftAnomaly(s Shift) MissingPairError {
	return MissingPairError{EmployeeID: s.EmployeeID, Date: s.Date}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// netHours computes rounded net hours for one day's interval. Negative when
// the interval itself is inverted.
func netHours(start, end time.Time, breakMinutes, roundingMinutes int) float64 {
	if end.Before(start) {
		return -1
	}
	minutes := int(end.Sub(start).Minutes()) - breakMinutes
	if minutes < 0 {
		minutes = 0
	}
	return float64(RoundToNearest(minutes, roundingMinutes)) / 60.0
}

// addDay folds one day's hours into the bucket: the per-day overtime split
// plus the clock-in night overlay.
func addDay(bucket *HourBucket, hours float64, start time.Time, opts CalcOptions) {
	regular, overtime := OvertimeSplit(hours, opts.OvertimeThreshold)
	bucket.Regular += regular
	bucket.Overtime += overtime
	bucket.WorkDays++

	if IsNightHour(start, *opts.NightStartHour, *opts.NightEndHour) {
		bucket.Night += hours
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
