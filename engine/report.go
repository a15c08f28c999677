/*
report.go - Period aggregation across employees

PURPOSE:
  Drives the hours calculator and wage engine over every employee for a
  period, producing payroll rows (actual and estimated), a monthly summary,
  and attendance-quality rows. Also serves the live dashboard and the
  seven-day hours series.

DETERMINISM:
  Run reads the store, computes, and returns. Nothing derived is written
  back, so running twice on unchanged data yields identical reports.

SEE ALSO:
  - hours.go, wage.go: The per-employee computations
  - store.go: The only data source
*/
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// AttendanceReport is one employee's attendance-quality row for a period.
type AttendanceReport struct {
	EmployeeID     string
	EmployeeName   string
	WorkDays       int
	TotalHours     float64
	OvertimeHours  float64
	LateDays       int
	EarlyLeaveDays int
	Anomalies      []MissingPairError
}

// MonthlySummary aggregates the actual payroll rows of a period.
type MonthlySummary struct {
	TotalWorkingHours  float64
	TotalOvertimeHours float64
	EmployeeCount      int
	AverageHours       float64
	TotalPayroll       decimal.Decimal
}

// PayrollReport is the full output of one aggregation run.
type PayrollReport struct {
	Period     Period
	Actual     []PayrollRecord
	Estimated  []PayrollRecord
	Summary    MonthlySummary
	Attendance []AttendanceReport
}

// DashboardStats is the live snapshot the dashboard shows.
type DashboardStats struct {
	TotalEmployees   int // active roster size
	CurrentlyWorking int
	OnBreak          int
	TotalHoursToday  float64
	PendingApprovals int
}

// WeeklyStat is one day of the trailing hours series.
type WeeklyStat struct {
	Date     string
	Hours    float64
	Overtime float64
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator runs period computations over the whole roster.
type Aggregator struct {
	store Store
	opts  CalcOptions
}

// NewAggregator builds an aggregator with the given base options. The
// rounding and night window fields are overridden per run by the active
// wage rule.
func NewAggregator(store Store, opts CalcOptions) *Aggregator {
	return &Aggregator{store: store, opts: opts.withDefaults()}
}

// Run computes the payroll report for the period. A non-empty employeeID
// restricts the report to that employee. Fails fast on wage-rule
// resolution; per-record anomalies never abort the run.
func (a *Aggregator) Run(ctx context.Context, period Period, employeeID string) (*PayrollReport, error) {
	rules, err := a.store.ListWageRules(ctx)
	if err != nil {
		return nil, err
	}
	rule, err := ActiveRule(rules)
	if err != nil {
		return nil, err
	}

	opts := a.opts
	opts.RoundingMinutes = rule.RoundingMinutes
	opts.NightStartHour = &rule.NightStartHour
	opts.NightEndHour = &rule.NightEndHour
	if rule.HolidayRate > 1.0 {
		opts.TreatWeekendAsHoliday = true
	}

	employees, err := a.roster(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	report := &PayrollReport{Period: period}
	report.Summary.TotalPayroll = decimal.Zero

	for _, emp := range employees {
		records, err := a.store.GetTimeRecords(ctx, emp.ID, period)
		if err != nil {
			return nil, err
		}
		actualBucket := HoursFromRecords(records, opts)
		actual := ApplyWageRule(emp, actualBucket, *rule, PayrollActual, period)
		report.Actual = append(report.Actual, actual)

		shifts, err := a.store.GetShifts(ctx, emp.ID, period)
		if err != nil {
			return nil, err
		}
		estBucket := HoursFromShifts(shifts, opts)
		report.Estimated = append(report.Estimated,
			ApplyWageRule(emp, estBucket, *rule, PayrollEstimated, period))

		report.Attendance = append(report.Attendance, AttendanceReport{
			EmployeeID:     emp.ID,
			EmployeeName:   emp.Name,
			WorkDays:       actualBucket.WorkDays,
			TotalHours:     actualBucket.Total(),
			OvertimeHours:  actualBucket.Overtime,
			LateDays:       actualBucket.LateDays,
			EarlyLeaveDays: actualBucket.EarlyLeaveDays,
			Anomalies:      actualBucket.Anomalies,
		})

		report.Summary.TotalWorkingHours += actualBucket.Total()
		report.Summary.TotalOvertimeHours += actualBucket.Overtime
		report.Summary.TotalPayroll = report.Summary.TotalPayroll.Add(actual.TotalPay)
	}

	report.Summary.EmployeeCount = len(employees)
	if len(employees) > 0 {
		report.Summary.AverageHours = report.Summary.TotalWorkingHours / float64(len(employees))
	}
	return report, nil
}

func (a *Aggregator) roster(ctx context.Context, employeeID string) ([]Employee, error) {
	if employeeID != "" {
		emp, err := a.store.GetEmployee(ctx, employeeID)
		if err != nil {
			return nil, err
		}
		return []Employee{*emp}, nil
	}
	return a.store.ListEmployees(ctx)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard computes the live snapshot for the given day.
func (a *Aggregator) Dashboard(ctx context.Context, today time.Time) (*DashboardStats, error) {
	employees, err := a.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	for _, emp := range employees {
		if emp.IsActive() {
			stats.TotalEmployees++
		}
	}

	day := Period{Start: Midnight(today), End: Midnight(today)}
	records, err := a.store.GetTimeRecords(ctx, "", day)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		switch r.Status {
		case RecordWorking:
			stats.CurrentlyWorking++
		case RecordBreak:
			stats.OnBreak++
		case RecordPendingApproval:
			stats.PendingApprovals++
		}
		if r.HasPair() {
			stats.TotalHoursToday += r.WorkingHours
		}
	}
	return stats, nil
}

// WeeklyStats returns the trailing seven-day hours series ending at endDay,
// oldest first. Days without completed records contribute zero rows.
func (a *Aggregator) WeeklyStats(ctx context.Context, endDay time.Time) ([]WeeklyStat, error) {
	week := LastNDays(endDay, 7)
	records, err := a.store.GetTimeRecords(ctx, "", week)
	if err != nil {
		return nil, err
	}

	byDate := map[string]*WeeklyStat{}
	for _, r := range records {
		if !r.HasPair() {
			continue
		}
		st, ok := byDate[r.Date]
		if !ok {
			st = &WeeklyStat{Date: r.Date}
			byDate[r.Date] = st
		}
		st.Hours += r.WorkingHours
		st.Overtime += r.OvertimeHours
	}

	out := make([]WeeklyStat, 0, 7)
	for _, day := range week.Days() {
		key := DateKey(day)
		if st, ok := byDate[key]; ok {
			out = append(out, *st)
		} else {
			out = append(out, WeeklyStat{Date: key})
		}
	}
	return out, nil
}
