/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Pay amounts are serialized as decimal strings, never floats. Hours stay
  numeric.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: The domain types behind them
*/
package api

import (
	"time"

	"github.com/kintai/attendance-engine/engine"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	Department    string `json:"department,omitempty"`
	HourlyWage    string `json:"hourly_wage"`
	HireDate      string `json:"hire_date,omitempty"`
	Status        string `json:"status"`
	FixedWorkDays []int  `json:"fixed_work_days,omitempty"`
	FixedDaysOff  []int  `json:"fixed_days_off,omitempty"`
	WorkStartTime string `json:"work_start_time,omitempty"`
	WorkEndTime   string `json:"work_end_time,omitempty"`
	WorkStatus    string `json:"work_status,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// SaveEmployeeRequest is the request to create or update an employee.
type SaveEmployeeRequest struct {
	ID            string `json:"id,omitempty"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Department    string `json:"department"`
	HourlyWage    string `json:"hourly_wage"`
	HireDate      string `json:"hire_date"`
	Status        string `json:"status"`
	FixedWorkDays []int  `json:"fixed_work_days"`
	FixedDaysOff  []int  `json:"fixed_days_off"`
	WorkStartTime string `json:"work_start_time"`
	WorkEndTime   string `json:"work_end_time"`
}

// =============================================================================
// CLOCK / TIME RECORDS
// =============================================================================

// ClockRequest moves an employee to a new work status.
type ClockRequest struct {
	Status string `json:"status"` // offline | working | break | overtime
}

// TimeRecordDTO represents a time record in API responses.
type TimeRecordDTO struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	Date          string  `json:"date"`
	ClockIn       *string `json:"clock_in,omitempty"`
	ClockOut      *string `json:"clock_out,omitempty"`
	BreakDuration int     `json:"break_duration"`
	WorkingHours  float64 `json:"working_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes,omitempty"`
	ApprovedBy    string  `json:"approved_by,omitempty"`
}

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	BreakDuration int    `json:"break_duration"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
}

// CreateShiftRequest is the request to create a shift by hand.
type CreateShiftRequest struct {
	EmployeeID    string `json:"employee_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	BreakDuration int    `json:"break_duration"`
	Type          string `json:"type"`
	Notes         string `json:"notes"`
}

// GenerateShiftsRequest drives auto-generation over a date range.
// Existing shifts in the range are replaced.
type GenerateShiftsRequest struct {
	From       string `json:"from"` // YYYY-MM-DD
	To         string `json:"to"`
	EmployeeID string `json:"employee_id,omitempty"` // empty = whole roster
}

// GenerateShiftsResponse reports the outcome of a generation run.
type GenerateShiftsResponse struct {
	Deleted int `json:"deleted"`
	Created int `json:"created"`
}

// =============================================================================
// WAGE RULES
// =============================================================================

// WageRuleDTO represents a wage rule in API responses and save requests.
type WageRuleDTO struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name"`
	BaseRate        string   `json:"base_rate"`
	OvertimeRate    float64  `json:"overtime_rate"`
	NightRate       float64  `json:"night_rate"`
	HolidayRate     float64  `json:"holiday_rate"`
	NightStartHour  int      `json:"night_start_hour"`
	NightEndHour    int      `json:"night_end_hour"`
	RoundingMinutes int      `json:"rounding_minutes"`
	Active          bool     `json:"active"`
	MinHours        *float64 `json:"min_hours,omitempty"`
	Weekdays        []int    `json:"weekdays,omitempty"`
}

// =============================================================================
// PAYROLL AND REPORTS
// =============================================================================

// HourBucketDTO is the hour breakdown inside payroll rows.
type HourBucketDTO struct {
	Regular        float64 `json:"regular"`
	Overtime       float64 `json:"overtime"`
	Night          float64 `json:"night"`
	Holiday        float64 `json:"holiday"`
	Total          float64 `json:"total"`
	TotalFormatted string  `json:"total_formatted"`
	WorkDays       int     `json:"work_days"`
	LateDays       int     `json:"late_days"`
	EarlyLeaveDays int     `json:"early_leave_days"`
}

// PayrollRecordDTO is one employee's pay breakdown.
type PayrollRecordDTO struct {
	EmployeeID  string        `json:"employee_id"`
	Kind        string        `json:"kind"` // actual | estimated
	Hours       HourBucketDTO `json:"hours"`
	RegularPay  string        `json:"regular_pay"`
	OvertimePay string        `json:"overtime_pay"`
	NightPay    string        `json:"night_pay"`
	HolidayPay  string        `json:"holiday_pay"`
	TotalPay    string        `json:"total_pay"`
}

// AnomalyDTO surfaces a dangling clock pair.
type AnomalyDTO struct {
	EmployeeID  string `json:"employee_id"`
	Date        string `json:"date"`
	HasClockIn  bool   `json:"has_clock_in"`
	HasClockOut bool   `json:"has_clock_out"`
}

// AttendanceReportDTO is one employee's attendance-quality row.
type AttendanceReportDTO struct {
	EmployeeID     string       `json:"employee_id"`
	EmployeeName   string       `json:"employee_name"`
	WorkDays       int          `json:"work_days"`
	TotalHours     float64      `json:"total_hours"`
	OvertimeHours  float64      `json:"overtime_hours"`
	LateDays       int          `json:"late_days"`
	EarlyLeaveDays int          `json:"early_leave_days"`
	Anomalies      []AnomalyDTO `json:"anomalies,omitempty"`
}

// MonthlySummaryDTO aggregates a period's actual payroll.
type MonthlySummaryDTO struct {
	TotalWorkingHours  float64 `json:"total_working_hours"`
	TotalOvertimeHours float64 `json:"total_overtime_hours"`
	EmployeeCount      int     `json:"employee_count"`
	AverageHours       float64 `json:"average_hours"`
	TotalPayroll       string  `json:"total_payroll"`
}

// PayrollReportDTO is the full payroll report for a period.
type PayrollReportDTO struct {
	From      string             `json:"from"`
	To        string             `json:"to"`
	Actual    []PayrollRecordDTO `json:"actual"`
	Estimated []PayrollRecordDTO `json:"estimated"`
	Summary   MonthlySummaryDTO  `json:"summary"`
}

// DashboardDTO is the live snapshot for the dashboard.
type DashboardDTO struct {
	TotalEmployees   int     `json:"total_employees"`
	CurrentlyWorking int     `json:"currently_working"`
	OnBreak          int     `json:"on_break"`
	TotalHoursToday  float64 `json:"total_hours_today"`
	PendingApprovals int     `json:"pending_approvals"`
}

// WeeklyStatDTO is one day of the trailing hours series.
type WeeklyStatDTO struct {
	Date     string  `json:"date"`
	Hours    float64 `json:"hours"`
	Overtime float64 `json:"overtime"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e engine.Employee, workStatus engine.WorkStatus) EmployeeDTO {
	return EmployeeDTO{
		ID:            e.ID,
		Code:          e.Code,
		Name:          e.Name,
		Email:         e.Email,
		Role:          e.Role,
		Department:    e.Department,
		HourlyWage:    e.HourlyWage.String(),
		HireDate:      e.HireDate,
		Status:        string(e.Status),
		FixedWorkDays: weekdaysToInts(e.FixedWorkDays),
		FixedDaysOff:  weekdaysToInts(e.FixedDaysOff),
		WorkStartTime: e.WorkStartTime,
		WorkEndTime:   e.WorkEndTime,
		WorkStatus:    string(workStatus),
		CreatedAt:     formatTime(e.CreatedAt),
	}
}

func toTimeRecordDTO(r engine.TimeRecord) TimeRecordDTO {
	return TimeRecordDTO{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		Date:          r.Date,
		ClockIn:       formatTimePtr(r.ClockIn),
		ClockOut:      formatTimePtr(r.ClockOut),
		BreakDuration: r.BreakDuration,
		WorkingHours:  r.WorkingHours,
		OvertimeHours: r.OvertimeHours,
		Status:        string(r.Status),
		Notes:         r.Notes,
		ApprovedBy:    r.ApprovedBy,
	}
}

func toShiftDTO(s engine.Shift) ShiftDTO {
	return ShiftDTO{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		Date:          s.Date,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		BreakDuration: s.BreakDuration,
		Type:          string(s.Type),
		Status:        string(s.Status),
		Notes:         s.Notes,
	}
}

func toWageRuleDTO(r engine.WageRule) WageRuleDTO {
	return WageRuleDTO{
		ID:              r.ID,
		Name:            r.Name,
		BaseRate:        r.BaseRate.String(),
		OvertimeRate:    r.OvertimeRate,
		NightRate:       r.NightRate,
		HolidayRate:     r.HolidayRate,
		NightStartHour:  r.NightStartHour,
		NightEndHour:    r.NightEndHour,
		RoundingMinutes: r.RoundingMinutes,
		Active:          r.Active,
		MinHours:        r.Conditions.MinHours,
		Weekdays:        weekdaysToInts(r.Conditions.Weekdays),
	}
}

func toPayrollRecordDTO(p engine.PayrollRecord) PayrollRecordDTO {
	return PayrollRecordDTO{
		EmployeeID: p.EmployeeID,
		Kind:       string(p.Kind),
		Hours: HourBucketDTO{
			Regular:        p.Hours.Regular,
			Overtime:       p.Hours.Overtime,
			Night:          p.Hours.Night,
			Holiday:        p.Hours.Holiday,
			Total:          p.Hours.Total(),
			TotalFormatted: engine.FormatDuration(p.Hours.Total()),
			WorkDays:       p.Hours.WorkDays,
			LateDays:       p.Hours.LateDays,
			EarlyLeaveDays: p.Hours.EarlyLeaveDays,
		},
		RegularPay:  p.RegularPay.StringFixed(2),
		OvertimePay: p.OvertimePay.StringFixed(2),
		NightPay:    p.NightPay.StringFixed(2),
		HolidayPay:  p.HolidayPay.StringFixed(2),
		TotalPay:    p.TotalPay.StringFixed(2),
	}
}

func toPayrollRecordDTOs(records []engine.PayrollRecord) []PayrollRecordDTO {
	dtos := make([]PayrollRecordDTO, len(records))
	for i, p := range records {
		dtos[i] = toPayrollRecordDTO(p)
	}
	return dtos
}

func toAttendanceReportDTO(a engine.AttendanceReport) AttendanceReportDTO {
	dto := AttendanceReportDTO{
		EmployeeID:     a.EmployeeID,
		EmployeeName:   a.EmployeeName,
		WorkDays:       a.WorkDays,
		TotalHours:     a.TotalHours,
		OvertimeHours:  a.OvertimeHours,
		LateDays:       a.LateDays,
		EarlyLeaveDays: a.EarlyLeaveDays,
	}
	for _, an := range a.Anomalies {
		dto.Anomalies = append(dto.Anomalies, AnomalyDTO{
			EmployeeID:  an.EmployeeID,
			Date:        an.Date,
			HasClockIn:  an.HasClockIn,
			HasClockOut: an.HasClockOut,
		})
	}
	return dto
}

// Helpers

func weekdaysToInts(days []time.Weekday) []int {
	if len(days) == 0 {
		return nil
	}
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}

func intsToWeekdays(ints []int) []time.Weekday {
	if len(ints) == 0 {
		return nil
	}
	out := make([]time.Weekday, 0, len(ints))
	for _, n := range ints {
		if n >= 0 && n <= 6 {
			out = append(out, time.Weekday(n))
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
