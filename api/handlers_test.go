/*
handlers_test.go - HTTP-level tests for the attendance API

Tests exercise the full router with an in-memory store:
- Employee CRUD and validation
- Clock transitions and error mapping
- Shift generation
- Payroll and dashboard reports
- Wage rule activation conflicts
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintai/attendance-engine/api"
	"github.com/kintai/attendance-engine/engine"
	"github.com/kintai/attendance-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	router http.Handler
	store  *store.Memory
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		store: store.NewMemory(),
		now:   time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
	h := api.NewHandler(ts.store, time.UTC, func() time.Time { return ts.now })
	ts.router = api.NewRouter(h, zerolog.Nop())
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func (ts *testServer) seedEmployee(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, ts.store.SaveEmployee(context.Background(), engine.Employee{
		ID:            id,
		Code:          "E-" + id,
		Name:          "Suzuki",
		HourlyWage:    decimal.NewFromInt(1000),
		Status:        engine.EmployeeActive,
		FixedWorkDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		WorkStartTime: "09:00",
		WorkEndTime:   "18:00",
	}))
}

func (ts *testServer) seedRule(t *testing.T) {
	t.Helper()
	require.NoError(t, ts.store.SaveWageRule(context.Background(), engine.WageRule{
		ID:             "rule-1",
		Name:           "standard",
		BaseRate:       decimal.NewFromInt(1000),
		OvertimeRate:   1.25,
		NightRate:      1.25,
		HolidayRate:    1.35,
		NightStartHour: 22,
		NightEndHour:   5,
		Active:         true,
	}))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestAPI_CreateAndGetEmployee(t *testing.T) {
	ts := newTestServer(t)

	// WHEN: Creating an employee
	rec := ts.do(t, http.MethodPost, "/api/employees", map[string]any{
		"code":            "E001",
		"name":            "Tanaka",
		"hourly_wage":     "1200",
		"fixed_work_days": []int{1, 2, 3, 4, 5},
		"work_start_time": "09:00",
		"work_end_time":   "18:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "active", created["status"])
	assert.Equal(t, "offline", created["work_status"])

	// THEN: It is retrievable
	rec = ts.do(t, http.MethodGet, "/api/employees/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "Tanaka", got["name"])
	assert.Equal(t, "1200", got["hourly_wage"])
}

func TestAPI_CreateEmployee_Validation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"code": "E001", "hourly_wage": "1000"}},
		{"bad wage", map[string]any{"code": "E001", "name": "X", "hourly_wage": "abc"}},
		{"negative wage", map[string]any{"code": "E001", "name": "X", "hourly_wage": "-5"}},
		{"bad hire date", map[string]any{"code": "E001", "name": "X", "hourly_wage": "1000", "hire_date": "03/10/2025"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/employees", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAPI_Employee_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/employees/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/employees/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_DeleteEmployee(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")

	rec := ts.do(t, http.MethodDelete, "/api/employees/emp-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/employees/emp-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// CLOCK
// =============================================================================

func TestAPI_ClockLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")

	// WHEN: Clocking in
	rec := ts.do(t, http.MethodPost, "/api/clock/emp-1", map[string]string{"status": "working"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	record := decode[map[string]any](t, rec)
	assert.Equal(t, "working", record["status"])
	assert.Equal(t, "2025-03-10", record["date"])

	// THEN: Live status reflects it
	rec = ts.do(t, http.MethodGet, "/api/clock/emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "working", decode[map[string]string](t, rec)["status"])

	// WHEN: Clocking out 9 hours later with a 60-minute break folded in
	ts.now = ts.now.Add(4 * time.Hour)
	rec = ts.do(t, http.MethodPost, "/api/clock/emp-1", map[string]string{"status": "break"})
	require.Equal(t, http.StatusOK, rec.Code)
	ts.now = ts.now.Add(time.Hour)
	rec = ts.do(t, http.MethodPost, "/api/clock/emp-1", map[string]string{"status": "working"})
	require.Equal(t, http.StatusOK, rec.Code)
	ts.now = ts.now.Add(5 * time.Hour)
	rec = ts.do(t, http.MethodPost, "/api/clock/emp-1", map[string]string{"status": "offline"})
	require.Equal(t, http.StatusOK, rec.Code)

	record = decode[map[string]any](t, rec)
	assert.Equal(t, "completed", record["status"])
	assert.EqualValues(t, 60, record["break_duration"])
	assert.InDelta(t, 9.0, record["working_hours"].(float64), 1e-9)
	assert.InDelta(t, 1.0, record["overtime_hours"].(float64), 1e-9)
}

func TestAPI_Clock_IllegalTransition_Conflict(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")

	// Break without clocking in first.
	rec := ts.do(t, http.MethodPost, "/api/clock/emp-1", map[string]string{"status": "break"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_Clock_UnknownStatusAndEmployee(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")

	rec := ts.do(t, http.MethodPost, "/api/clock/emp-1", map[string]string{"status": "vacation"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/clock/missing", map[string]string{"status": "working"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestAPI_GenerateShifts(t *testing.T) {
	// GIVEN: A Mon-Fri employee and the week of 2025-03-10
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")

	rec := ts.do(t, http.MethodPost, "/api/shifts/generate", map[string]string{
		"from": "2025-03-10",
		"to":   "2025-03-16",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[map[string]int](t, rec)
	assert.Equal(t, 0, result["deleted"])
	assert.Equal(t, 5, result["created"])

	// Regenerating replaces instead of duplicating.
	rec = ts.do(t, http.MethodPost, "/api/shifts/generate", map[string]string{
		"from": "2025-03-10",
		"to":   "2025-03-16",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	result = decode[map[string]int](t, rec)
	assert.Equal(t, 5, result["deleted"])
	assert.Equal(t, 5, result["created"])

	rec = ts.do(t, http.MethodGet, "/api/shifts?from=2025-03-10&to=2025-03-16", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	shifts := decode[[]map[string]any](t, rec)
	require.Len(t, shifts, 5)
	assert.Equal(t, "2025-03-10", shifts[0]["date"])
	assert.Equal(t, "09:00", shifts[0]["start_time"])
}

func TestAPI_CreateShift_Validation(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")

	rec := ts.do(t, http.MethodPost, "/api/shifts", map[string]any{
		"employee_id": "emp-1", "date": "2025-03-10",
		"start_time": "25:00", "end_time": "18:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/shifts", map[string]any{
		"employee_id": "missing", "date": "2025-03-10",
		"start_time": "09:00", "end_time": "18:00",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/shifts", map[string]any{
		"employee_id": "emp-1", "date": "2025-03-10",
		"start_time": "09:00", "end_time": "18:00", "break_duration": 60,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	shift := decode[map[string]any](t, rec)
	assert.Equal(t, "regular", shift["type"])
	assert.Equal(t, "scheduled", shift["status"])
}

// =============================================================================
// PAYROLL AND REPORTS
// =============================================================================

func TestAPI_Payroll_Month(t *testing.T) {
	// GIVEN: A rule and one completed 9h day
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")
	ts.seedRule(t)
	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	out := in.Add(10 * time.Hour)
	require.NoError(t, ts.store.CreateTimeRecord(context.Background(), engine.TimeRecord{
		ID: "r1", EmployeeID: "emp-1", Date: "2025-03-10",
		ClockIn: &in, ClockOut: &out, BreakDuration: 60,
		Status: engine.RecordCompleted,
	}))

	rec := ts.do(t, http.MethodGet, "/api/payroll?month=2025-03", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		From   string `json:"from"`
		Actual []struct {
			EmployeeID string `json:"employee_id"`
			TotalPay   string `json:"total_pay"`
		} `json:"actual"`
		Summary struct {
			TotalPayroll string `json:"total_payroll"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, "2025-03-01", report.From)
	require.Len(t, report.Actual, 1)
	assert.Equal(t, "9250.00", report.Actual[0].TotalPay)
	assert.Equal(t, "9250.00", report.Summary.TotalPayroll)
}

func TestAPI_Payroll_NoActiveRule_Conflict(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")

	rec := ts.do(t, http.MethodGet, "/api/payroll?month=2025-03", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_Payroll_BadMonth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/payroll?month=March", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Dashboard(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1")

	rec := ts.do(t, http.MethodPost, "/api/clock/emp-1", map[string]string{"status": "working"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, stats["total_employees"])
	assert.EqualValues(t, 1, stats["currently_working"])
}

func TestAPI_WeeklyStats(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/reports/weekly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[[]map[string]any](t, rec)
	require.Len(t, stats, 7)
	assert.Equal(t, "2025-03-04", stats[0]["date"])
	assert.Equal(t, "2025-03-10", stats[6]["date"])
}

// =============================================================================
// WAGE RULES
// =============================================================================

func TestAPI_WageRules_SaveAndList(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/wage-rules", map[string]any{
		"name": "standard", "base_rate": "1000",
		"overtime_rate": 1.25, "night_rate": 1.25, "holiday_rate": 1.35,
		"night_start_hour": 22, "night_end_hour": 5,
		"rounding_minutes": 15, "active": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/wage-rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decode[[]map[string]any](t, rec)
	require.Len(t, rules, 1)
	assert.Equal(t, "standard", rules[0]["name"])
	assert.Equal(t, true, rules[0]["active"])
}

func TestAPI_WageRules_SecondActive_Conflict(t *testing.T) {
	ts := newTestServer(t)
	ts.seedRule(t)

	rec := ts.do(t, http.MethodPost, "/api/wage-rules", map[string]any{
		"name": "night shift", "base_rate": "1100", "active": true,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Inactive rules can coexist.
	rec = ts.do(t, http.MethodPost, "/api/wage-rules", map[string]any{
		"name": "night shift", "base_rate": "1100", "active": false,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
