/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance and payroll engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees               List all employees
    POST   /api/employees               Create employee
    GET    /api/employees/{id}          Get employee details
    PUT    /api/employees/{id}          Update employee
    DELETE /api/employees/{id}          Remove employee

  Clock:
    POST   /api/clock/{employeeID}      Move to a new work status
    GET    /api/clock/{employeeID}      Current live status

  Records and shifts:
    GET    /api/records                 List time records (from/to filter)
    GET    /api/shifts                  List shifts (from/to filter)
    POST   /api/shifts                  Create a shift by hand
    POST   /api/shifts/generate         Regenerate shifts for a range

  Payroll and reports:
    GET    /api/payroll                 Payroll report for a month
    GET    /api/reports/attendance      Attendance-quality rows
    GET    /api/reports/dashboard       Live dashboard snapshot
    GET    /api/reports/weekly          Trailing 7-day hours series

  Wage rules:
    GET    /api/wage-rules              List rules
    POST   /api/wage-rules              Create or update a rule

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Illegal transition, wage-rule resolution conflicts
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kintai/attendance-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      engine.Store
	Tracker    *engine.Tracker
	Aggregator *engine.Aggregator
	Generator  *engine.ShiftGenerator

	// Loc resolves month and date query parameters. Defaults to UTC.
	Loc *time.Location

	clock func() time.Time
}

// NewHandler creates a new handler over the store. A nil clock means time.Now.
func NewHandler(store engine.Store, loc *time.Location, clock func() time.Time) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		Store:      store,
		Tracker:    engine.NewTracker(store, clock),
		Aggregator: engine.NewAggregator(store, engine.CalcOptions{Location: loc}),
		Generator:  engine.NewShiftGenerator(store, clock),
		Loc:        loc,
		clock:      clock,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees with their live work status.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e, h.Tracker.Status(e.ID))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp, h.Tracker.Status(emp.ID)))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	h.saveEmployee(w, r, "")
}

// UpdateEmployee updates an existing employee in place.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	h.saveEmployee(w, r, id)
}

func (h *Handler) saveEmployee(w http.ResponseWriter, r *http.Request, id string) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required", nil)
		return
	}

	wage, err := decimal.NewFromString(req.HourlyWage)
	if err != nil || wage.IsNegative() {
		writeError(w, http.StatusBadRequest, "hourly_wage must be a non-negative decimal", err)
		return
	}
	if req.HireDate != "" {
		if _, err := engine.ParseDate(req.HireDate, h.Loc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
			return
		}
	}

	status := engine.EmployeeStatus(req.Status)
	if status == "" {
		status = engine.EmployeeActive
	}

	created := id == ""
	if created {
		id = req.ID
		if id == "" {
			id = uuid.NewString()
		}
	}

	emp := engine.Employee{
		ID:            id,
		Code:          req.Code,
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Department:    req.Department,
		HourlyWage:    wage,
		HireDate:      req.HireDate,
		Status:        status,
		FixedWorkDays: intsToWeekdays(req.FixedWorkDays),
		FixedDaysOff:  intsToWeekdays(req.FixedDaysOff),
		WorkStartTime: req.WorkStartTime,
		WorkEndTime:   req.WorkEndTime,
		CreatedAt:     h.clock(),
		UpdatedAt:     h.clock(),
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}

	status2 := http.StatusOK
	if created {
		status2 = http.StatusCreated
	}
	writeJSON(w, status2, toEmployeeDTO(emp, h.Tracker.Status(emp.ID)))
}

// DeleteEmployee removes an employee.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CLOCK HANDLERS
// =============================================================================

// Clock moves an employee to a new work status.
func (h *Handler) Clock(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	to := engine.WorkStatus(req.Status)
	switch to {
	case engine.StatusOffline, engine.StatusWorking, engine.StatusBreak, engine.StatusOvertime:
	default:
		writeError(w, http.StatusBadRequest, "Unknown status: "+req.Status, nil)
		return
	}

	// The roster is the authority on who can clock in.
	if _, err := h.Store.GetEmployee(r.Context(), employeeID); err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}

	rec, err := h.Tracker.Transition(r.Context(), employeeID, to)
	if err != nil {
		writeDomainError(w, "Transition rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeRecordDTO(*rec))
}

// ClockStatus returns an employee's live status.
func (h *Handler) ClockStatus(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	writeJSON(w, http.StatusOK, map[string]string{
		"employee_id": employeeID,
		"status":      string(h.Tracker.Status(employeeID)),
	})
}

// =============================================================================
// TIME RECORD HANDLERS
// =============================================================================

// ListTimeRecords returns records for an optional employee and range.
func (h *Handler) ListTimeRecords(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from/to range", err)
		return
	}

	records, err := h.Store.GetTimeRecords(r.Context(), r.URL.Query().Get("employee_id"), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	dtos := make([]TimeRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toTimeRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns shifts for an optional employee and range.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from/to range", err)
		return
	}

	shifts, err := h.Store.GetShifts(r.Context(), r.URL.Query().Get("employee_id"), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateShift creates a single shift by hand.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day, err := engine.ParseDate(req.Date, h.Loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	if _, err := engine.ParseClock(day, req.StartTime); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time (use HH:MM)", err)
		return
	}
	if _, err := engine.ParseClock(day, req.EndTime); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time (use HH:MM)", err)
		return
	}
	if _, err := h.Store.GetEmployee(r.Context(), req.EmployeeID); err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}

	shiftType := engine.ShiftType(req.Type)
	if shiftType == "" {
		shiftType = engine.ShiftRegular
	}

	now := h.clock()
	shift := engine.Shift{
		ID:            uuid.NewString(),
		EmployeeID:    req.EmployeeID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		BreakDuration: req.BreakDuration,
		Type:          shiftType,
		Status:        engine.ShiftScheduled,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Store.CreateShift(r.Context(), shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(shift))
}

// GenerateShifts clears the range and regenerates shifts from the employees'
// fixed work-day patterns.
func (h *Handler) GenerateShifts(w http.ResponseWriter, r *http.Request) {
	var req GenerateShiftsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period, err := h.parsePeriod(req.From, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from/to range", err)
		return
	}

	ctx := r.Context()
	var employees []engine.Employee
	if req.EmployeeID != "" {
		emp, err := h.Store.GetEmployee(ctx, req.EmployeeID)
		if err != nil {
			writeDomainError(w, "Failed to get employee", err)
			return
		}
		employees = []engine.Employee{*emp}
	} else {
		employees, err = h.Store.ListEmployees(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
			return
		}
	}

	deleted, err := h.Store.DeleteShiftsInRange(ctx, req.EmployeeID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear range", err)
		return
	}
	created, err := h.Generator.Generate(ctx, employees, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate shifts", err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateShiftsResponse{Deleted: deleted, Created: created})
}

// =============================================================================
// PAYROLL AND REPORT HANDLERS
// =============================================================================

// Payroll returns the payroll report for a month (?month=YYYY-MM).
func (h *Handler) Payroll(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runReport(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, PayrollReportDTO{
		From:      engine.DateKey(report.Period.Start),
		To:        engine.DateKey(report.Period.End),
		Actual:    toPayrollRecordDTOs(report.Actual),
		Estimated: toPayrollRecordDTOs(report.Estimated),
		Summary: MonthlySummaryDTO{
			TotalWorkingHours:  report.Summary.TotalWorkingHours,
			TotalOvertimeHours: report.Summary.TotalOvertimeHours,
			EmployeeCount:      report.Summary.EmployeeCount,
			AverageHours:       report.Summary.AverageHours,
			TotalPayroll:       report.Summary.TotalPayroll.StringFixed(2),
		},
	})
}

// AttendanceReport returns attendance-quality rows for a month.
func (h *Handler) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runReport(w, r)
	if !ok {
		return
	}

	dtos := make([]AttendanceReportDTO, len(report.Attendance))
	for i, a := range report.Attendance {
		dtos[i] = toAttendanceReportDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) runReport(w http.ResponseWriter, r *http.Request) (*engine.PayrollReport, bool) {
	period, err := h.monthFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return nil, false
	}

	report, err := h.Aggregator.Run(r.Context(), period, r.URL.Query().Get("employee_id"))
	if err != nil {
		writeDomainError(w, "Failed to compute report", err)
		return nil, false
	}
	return report, true
}

// Dashboard returns the live snapshot.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Aggregator.Dashboard(r.Context(), h.clock().In(h.Loc))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardDTO{
		TotalEmployees:   stats.TotalEmployees,
		CurrentlyWorking: stats.CurrentlyWorking,
		OnBreak:          stats.OnBreak,
		TotalHoursToday:  stats.TotalHoursToday,
		PendingApprovals: stats.PendingApprovals,
	})
}

// WeeklyStats returns the trailing 7-day hours series.
func (h *Handler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Aggregator.WeeklyStats(r.Context(), h.clock().In(h.Loc))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute weekly stats", err)
		return
	}
	dtos := make([]WeeklyStatDTO, len(stats))
	for i, s := range stats {
		dtos[i] = WeeklyStatDTO{Date: s.Date, Hours: s.Hours, Overtime: s.Overtime}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// WAGE RULE HANDLERS
// =============================================================================

// ListWageRules returns all wage rules.
func (h *Handler) ListWageRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.ListWageRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list wage rules", err)
		return
	}
	dtos := make([]WageRuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = toWageRuleDTO(rule)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveWageRule creates or updates a rule. Activating a rule while another is
// active is rejected so payroll stays computable.
func (h *Handler) SaveWageRule(w http.ResponseWriter, r *http.Request) {
	var req WageRuleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	baseRate, err := decimal.NewFromString(req.BaseRate)
	if err != nil || baseRate.IsNegative() {
		writeError(w, http.StatusBadRequest, "base_rate must be a non-negative decimal", err)
		return
	}

	ctx := r.Context()
	if req.Active {
		rules, err := h.Store.ListWageRules(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list wage rules", err)
			return
		}
		for _, existing := range rules {
			if existing.Active && existing.ID != req.ID {
				writeError(w, http.StatusConflict,
					"Another rule is already active: "+existing.Name, engine.ErrAmbiguousWageRule)
				return
			}
		}
	}

	id := req.ID
	created := id == ""
	if created {
		id = uuid.NewString()
	}

	now := h.clock()
	rule := engine.WageRule{
		ID:              id,
		Name:            req.Name,
		BaseRate:        baseRate,
		OvertimeRate:    req.OvertimeRate,
		NightRate:       req.NightRate,
		HolidayRate:     req.HolidayRate,
		NightStartHour:  req.NightStartHour,
		NightEndHour:    req.NightEndHour,
		RoundingMinutes: req.RoundingMinutes,
		Active:          req.Active,
		Conditions: engine.RuleConditions{
			MinHours: req.MinHours,
			Weekdays: intsToWeekdays(req.Weekdays),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Store.SaveWageRule(ctx, rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save wage rule", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toWageRuleDTO(rule))
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

// periodFromQuery reads ?from=YYYY-MM-DD&to=YYYY-MM-DD, defaulting to the
// current month.
func (h *Handler) periodFromQuery(r *http.Request) (engine.Period, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" && to == "" {
		return engine.MonthOf(h.clock().In(h.Loc)), nil
	}
	return h.parsePeriod(from, to)
}

func (h *Handler) parsePeriod(from, to string) (engine.Period, error) {
	start, err := engine.ParseDate(from, h.Loc)
	if err != nil {
		return engine.Period{}, err
	}
	end, err := engine.ParseDate(to, h.Loc)
	if err != nil {
		return engine.Period{}, err
	}
	return engine.NewPeriod(start, end)
}

// monthFromQuery reads ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) monthFromQuery(r *http.Request) (engine.Period, error) {
	month := r.URL.Query().Get("month")
	if month == "" {
		return engine.MonthOf(h.clock().In(h.Loc)), nil
	}
	t, err := time.ParseInLocation("2006-01", month, h.Loc)
	if err != nil {
		return engine.Period{}, err
	}
	return engine.MonthOf(t), nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrNoActiveWageRule),
		errors.Is(err, engine.ErrAmbiguousWageRule):
		writeError(w, http.StatusConflict, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
