/*
Package engine provides the attendance and payroll calculation core.

PURPOSE:
  This package contains the domain types and algorithms for converting raw
  attendance events (clock punches and planned shifts) into hour buckets and
  pay amounts. It has no knowledge of HTTP, SQL, or rendering: callers supply
  records through the Store collaborator and receive computed results.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: roster entry with wage and fixed work-day patterns
  - TimeRecord: one day of actual clock events for an employee
  - Shift: a planned (not actual) work interval
  - WageRule: the active configuration of premium multipliers
  - HourBucket: derived regular/overtime/night/holiday hour totals
  - PayrollRecord: derived pay breakdown for an employee and period

DESIGN PRINCIPLES:
  1. Determinism: every computation is a pure function of its inputs;
     re-running on an unchanged record set yields identical results.
  2. Precision: pay amounts use decimal.Decimal, rounded only at
     presentation time, never inside the calculation chain.
  3. Derived data is recomputed, not patched: a new calculation replaces
     the previous PayrollRecord wholesale.

SEE ALSO:
  - clock.go:    duration math, rounding, night-hour detection
  - status.go:   the live work-status state machine
  - hours.go:    event lists -> HourBucket
  - wage.go:     HourBucket -> PayrollRecord
  - report.go:   period aggregation across employees
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WORK STATUS - Live state of one employee
// =============================================================================

// WorkStatus is the live state of an employee as tracked by the state machine.
type WorkStatus string

const (
	StatusOffline  WorkStatus = "offline"
	StatusWorking  WorkStatus = "working"
	StatusBreak    WorkStatus = "break"
	StatusOvertime WorkStatus = "overtime"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee is a roster entry. FixedWorkDays and FixedDaysOff drive the shift
// auto-generator; WorkStartTime/WorkEndTime ("HH:MM") override the generator's
// 09:00-18:00 default when set.
type Employee struct {
	ID         string
	Code       string
	Name       string
	Email      string
	Role       string
	Department string

	// HourlyWage is the base wage in the store's currency. Must be >= 0.
	HourlyWage decimal.Decimal

	HireDate string // YYYY-MM-DD
	Status   EmployeeStatus

	FixedWorkDays []time.Weekday
	FixedDaysOff  []time.Weekday
	WorkStartTime string // "HH:MM", empty = generator default
	WorkEndTime   string // "HH:MM", empty = generator default

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the employee is on the active roster.
func (e Employee) IsActive() bool { return e.Status == EmployeeActive }

// WorksOn reports whether the weekday is in the employee's fixed work-day set.
func (e Employee) WorksOn(wd time.Weekday) bool { return containsWeekday(e.FixedWorkDays, wd) }

// IsDayOff reports whether the weekday is in the employee's fixed day-off set.
func (e Employee) IsDayOff(wd time.Weekday) bool { return containsWeekday(e.FixedDaysOff, wd) }

func containsWeekday(set []time.Weekday, wd time.Weekday) bool {
	for _, d := range set {
		if d == wd {
			return true
		}
	}
	return false
}

// =============================================================================
// TIME RECORD - Actual clock events
// =============================================================================

// RecordStatus is the lifecycle state of a TimeRecord.
type RecordStatus string

const (
	RecordWorking         RecordStatus = "working"
	RecordBreak           RecordStatus = "break"
	RecordCompleted       RecordStatus = "completed"
	RecordPendingApproval RecordStatus = "pending_approval"
)

// TimeRecord is one attendance record for an employee on a date. It is created
// when the employee clocks in and mutated only by subsequent status
// transitions (or an approval action) until it is completed.
type TimeRecord struct {
	ID         string
	EmployeeID string
	Date       string // YYYY-MM-DD

	ClockIn  *time.Time
	ClockOut *time.Time

	// BreakStart marks an open break; it is folded into BreakDuration when
	// the break ends or the record is force-completed.
	BreakStart    *time.Time
	BreakDuration int // minutes, >= 0

	// Derived on completion, stored for dashboard queries.
	WorkingHours  float64
	OvertimeHours float64

	Status     RecordStatus
	Notes      string
	ApprovedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPair reports whether the record has both a clock-in and a clock-out.
func (r TimeRecord) HasPair() bool { return r.ClockIn != nil && r.ClockOut != nil }

// Open reports whether the record is still being shaped by transitions.
func (r TimeRecord) Open() bool {
	return r.Status == RecordWorking || r.Status == RecordBreak
}

// =============================================================================
// SHIFT - Planned work interval
// =============================================================================

type ShiftType string

const (
	ShiftRegular  ShiftType = "regular"
	ShiftOvertime ShiftType = "overtime"
	ShiftHoliday  ShiftType = "holiday"
)

type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "scheduled"
	ShiftConfirmed ShiftStatus = "confirmed"
	ShiftCancelled ShiftStatus = "cancelled"
)

// Shift is a planned work interval, as opposed to a TimeRecord which reflects
// actual clock events. Payroll computed from shifts is an estimate.
type Shift struct {
	ID         string
	EmployeeID string
	Date       string // YYYY-MM-DD

	StartTime     string // "HH:MM"
	EndTime       string // "HH:MM"
	BreakDuration int    // minutes

	Type   ShiftType
	Status ShiftStatus
	Notes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// WAGE RULE
// =============================================================================

// WageRule is a named configuration of pay multipliers and thresholds.
// At most one rule may be active at a time; the wage engine fails with
// ErrNoActiveWageRule / ErrAmbiguousWageRule otherwise.
type WageRule struct {
	ID   string
	Name string

	// BaseRate is the store's reference hourly rate. Pay computation uses
	// the employee's own HourlyWage; BaseRate is informational.
	BaseRate decimal.Decimal

	OvertimeRate float64 // e.g. 1.25 for a 25% premium
	NightRate    float64
	HolidayRate  float64

	NightStartHour int // e.g. 22
	NightEndHour   int // e.g. 5 (window wraps midnight when start > end)

	// RoundingMinutes normalizes worked minutes to the nearest multiple
	// before hour computation. 0 disables rounding.
	RoundingMinutes int

	Active     bool
	Conditions RuleConditions

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RuleConditions is the closed set of optional predicates a rule may carry.
// A rule whose conditions are not met degrades to base pay: all premium
// multipliers are treated as 1.0 for that computation.
type RuleConditions struct {
	// MinHours: premiums apply only when the bucket's total hours reach
	// this threshold.
	MinHours *float64

	// Weekdays: premiums apply only when the computation period includes
	// at least one of these weekdays.
	Weekdays []time.Weekday
}

// =============================================================================
// DERIVED RESULTS
// =============================================================================

// HourBucket is the per-employee, per-period hour breakdown produced by the
// hours calculator. Regular + Overtime always equals the total worked hours;
// Night and Holiday are overlays (an hour can be both overtime and night).
type HourBucket struct {
	Regular  float64
	Overtime float64
	Night    float64
	Holiday  float64

	// Attendance-quality signals. Not pay-affecting.
	WorkDays       int
	LateDays       int
	EarlyLeaveDays int

	// Anomalies lists dates whose records had a dangling clock-in or
	// clock-out. Those dates contribute zero hours.
	Anomalies []MissingPairError
}

// Total returns the total worked hours in the bucket.
func (b HourBucket) Total() float64 { return b.Regular + b.Overtime }

// PayrollKind distinguishes pay computed from actual clock records from pay
// estimated from planned shifts.
type PayrollKind string

const (
	PayrollActual    PayrollKind = "actual"
	PayrollEstimated PayrollKind = "estimated"
)

// PayrollRecord is the pay breakdown for one employee over a period. It is
// computed on demand and never mutated; a new computation replaces it.
type PayrollRecord struct {
	EmployeeID string
	Kind       PayrollKind
	Period     Period
	Hours      HourBucket

	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	NightPay    decimal.Decimal
	HolidayPay  decimal.Decimal
	TotalPay    decimal.Decimal
}
