package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintai/attendance-engine/engine"
	"github.com/kintai/attendance-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestAggregator(t *testing.T) (*engine.Aggregator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	agg := engine.NewAggregator(mem, engine.CalcOptions{Location: time.UTC})
	return agg, mem
}

func seedRoster(t *testing.T, mem *store.Memory, withRule bool) {
	t.Helper()
	ctx := context.Background()
	emp := hourlyEmployee(1000)
	emp.Code = "E001"
	require.NoError(t, mem.SaveEmployee(ctx, emp))
	if withRule {
		rule := standardRule()
		rule.RoundingMinutes = 0
		require.NoError(t, mem.SaveWageRule(ctx, rule))
	}
}

// =============================================================================
// PAYROLL RUNS
// =============================================================================

func TestAggregator_EndToEnd_NineHourDay(t *testing.T) {
	// GIVEN: A 1000/h employee, 09:00-19:00 with a 60-minute break
	agg, mem := newTestAggregator(t)
	ctx := context.Background()
	seedRoster(t, mem, true)
	require.NoError(t, mem.CreateTimeRecord(ctx,
		completedRecord("emp-1", "2025-03-10", 9, 0, 19, 0, 60)))

	// WHEN: Running the month
	report, err := agg.Run(ctx, marchPeriod(t), "")
	require.NoError(t, err)

	// THEN: 8 regular + 1 overtime -> 8000 + 1250 = 9250
	require.Len(t, report.Actual, 1)
	pay := report.Actual[0]
	assert.Equal(t, engine.PayrollActual, pay.Kind)
	assert.InDelta(t, 8.0, pay.Hours.Regular, 1e-9)
	assert.InDelta(t, 1.0, pay.Hours.Overtime, 1e-9)
	assert.True(t, pay.TotalPay.Equal(decimal.NewFromInt(9250)), "total: %s", pay.TotalPay)
	assert.True(t, report.Summary.TotalPayroll.Equal(decimal.NewFromInt(9250)))
	assert.Equal(t, 1, report.Summary.EmployeeCount)
	assert.InDelta(t, 9.0, report.Summary.TotalWorkingHours, 1e-9)
}

func TestAggregator_NoActiveRule_Fails(t *testing.T) {
	agg, mem := newTestAggregator(t)
	seedRoster(t, mem, false)

	_, err := agg.Run(context.Background(), marchPeriod(t), "")
	assert.ErrorIs(t, err, engine.ErrNoActiveWageRule)
}

func TestAggregator_Idempotent(t *testing.T) {
	// GIVEN: A seeded month
	agg, mem := newTestAggregator(t)
	ctx := context.Background()
	seedRoster(t, mem, true)
	require.NoError(t, mem.CreateTimeRecord(ctx,
		completedRecord("emp-1", "2025-03-10", 9, 0, 19, 0, 60)))
	require.NoError(t, mem.CreateShift(ctx, engine.Shift{
		ID: "s1", EmployeeID: "emp-1", Date: "2025-03-11",
		StartTime: "09:00", EndTime: "18:00", BreakDuration: 60,
		Type: engine.ShiftRegular, Status: engine.ShiftScheduled,
	}))

	// WHEN: Running twice on unchanged data
	first, err := agg.Run(ctx, marchPeriod(t), "")
	require.NoError(t, err)
	second, err := agg.Run(ctx, marchPeriod(t), "")
	require.NoError(t, err)

	// THEN: Identical reports
	assert.Equal(t, first, second)
}

func TestAggregator_EstimatedFromShifts(t *testing.T) {
	// GIVEN: No clock records, one planned 8h shift
	agg, mem := newTestAggregator(t)
	ctx := context.Background()
	seedRoster(t, mem, true)
	require.NoError(t, mem.CreateShift(ctx, engine.Shift{
		ID: "s1", EmployeeID: "emp-1", Date: "2025-03-11",
		StartTime: "09:00", EndTime: "18:00", BreakDuration: 60,
		Type: engine.ShiftRegular, Status: engine.ShiftScheduled,
	}))

	report, err := agg.Run(ctx, marchPeriod(t), "")
	require.NoError(t, err)

	// THEN: Estimated pay only; actual stays zero
	require.Len(t, report.Estimated, 1)
	assert.Equal(t, engine.PayrollEstimated, report.Estimated[0].Kind)
	assert.True(t, report.Estimated[0].TotalPay.Equal(decimal.NewFromInt(8000)))
	assert.True(t, report.Actual[0].TotalPay.IsZero())
	assert.True(t, report.Summary.TotalPayroll.IsZero(), "summary counts actual only")
}

func TestAggregator_SingleEmployeeFilter(t *testing.T) {
	agg, mem := newTestAggregator(t)
	ctx := context.Background()
	seedRoster(t, mem, true)
	other := hourlyEmployee(1500)
	other.ID, other.Code = "emp-2", "E002"
	require.NoError(t, mem.SaveEmployee(ctx, other))

	report, err := agg.Run(ctx, marchPeriod(t), "emp-2")
	require.NoError(t, err)
	require.Len(t, report.Actual, 1)
	assert.Equal(t, "emp-2", report.Actual[0].EmployeeID)

	_, err = agg.Run(ctx, marchPeriod(t), "missing")
	assert.ErrorIs(t, err, engine.ErrEmployeeNotFound)
}

func TestAggregator_AnomaliesSurfaceInAttendance(t *testing.T) {
	// GIVEN: One dangling record in the month
	agg, mem := newTestAggregator(t)
	ctx := context.Background()
	seedRoster(t, mem, true)
	require.NoError(t, mem.CreateTimeRecord(ctx, danglingRecord("emp-1", "2025-03-12", 9)))

	report, err := agg.Run(ctx, marchPeriod(t), "")
	require.NoError(t, err)

	// THEN: The run succeeds and the anomaly is reported
	require.Len(t, report.Attendance, 1)
	att := report.Attendance[0]
	assert.Zero(t, att.TotalHours)
	require.Len(t, att.Anomalies, 1)
	assert.Equal(t, "2025-03-12", att.Anomalies[0].Date)
}

// =============================================================================
// DASHBOARD AND WEEKLY SERIES
// =============================================================================

func TestAggregator_Dashboard(t *testing.T) {
	agg, mem := newTestAggregator(t)
	ctx := context.Background()
	today := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	// GIVEN: Two active employees and one inactive
	for i, id := range []string{"emp-1", "emp-2", "emp-3"} {
		emp := hourlyEmployee(1000)
		emp.ID = id
		emp.Code = "E00" + string(rune('1'+i))
		if id == "emp-3" {
			emp.Status = engine.EmployeeInactive
		}
		require.NoError(t, mem.SaveEmployee(ctx, emp))
	}
	// One working, one on break, one completed 8h day, one pending approval.
	in := today.Add(-5 * time.Hour)
	require.NoError(t, mem.CreateTimeRecord(ctx, engine.TimeRecord{
		ID: "r1", EmployeeID: "emp-1", Date: "2025-03-10",
		ClockIn: &in, Status: engine.RecordWorking,
	}))
	require.NoError(t, mem.CreateTimeRecord(ctx, engine.TimeRecord{
		ID: "r2", EmployeeID: "emp-2", Date: "2025-03-10",
		ClockIn: &in, Status: engine.RecordBreak,
	}))
	done := completedRecord("emp-3", "2025-03-10", 6, 0, 14, 0, 0)
	done.ID = "r3"
	done.WorkingHours = 8
	require.NoError(t, mem.CreateTimeRecord(ctx, done))
	pending := completedRecord("emp-1", "2025-03-10", 1, 0, 2, 0, 0)
	pending.ID = "r4"
	pending.Status = engine.RecordPendingApproval
	pending.WorkingHours = 1
	require.NoError(t, mem.CreateTimeRecord(ctx, pending))

	stats, err := agg.Dashboard(ctx, today)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalEmployees)
	assert.Equal(t, 1, stats.CurrentlyWorking)
	assert.Equal(t, 1, stats.OnBreak)
	assert.Equal(t, 1, stats.PendingApprovals)
	assert.InDelta(t, 9.0, stats.TotalHoursToday, 1e-9)
}

func TestAggregator_WeeklyStats_SevenRowsOldestFirst(t *testing.T) {
	agg, mem := newTestAggregator(t)
	ctx := context.Background()
	end := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	rec := completedRecord("emp-1", "2025-03-08", 9, 0, 19, 0, 60)
	rec.WorkingHours = 9
	rec.OvertimeHours = 1
	require.NoError(t, mem.CreateTimeRecord(ctx, rec))

	stats, err := agg.WeeklyStats(ctx, end)
	require.NoError(t, err)

	require.Len(t, stats, 7)
	assert.Equal(t, "2025-03-04", stats[0].Date)
	assert.Equal(t, "2025-03-10", stats[6].Date)
	// Day 2025-03-08 is index 4.
	assert.InDelta(t, 9.0, stats[4].Hours, 1e-9)
	assert.InDelta(t, 1.0, stats[4].Overtime, 1e-9)
	assert.Zero(t, stats[0].Hours)
}
