/*
shiftgen.go - Shift auto-generation from fixed work-day patterns

PURPOSE:
  Walks a period day by day and emits a scheduled shift for every active
  employee on each of their fixed work days, skipping their fixed days off.

DEFAULTS:
  Generated shifts use the employee's WorkStartTime/WorkEndTime when set,
  otherwise 09:00-18:00, with a 60-minute break, type regular, status
  scheduled.

ADDITIVE:
  Generation only inserts. Callers that want overwrite semantics clear the
  range first with Store.DeleteShiftsInRange.

SEE ALSO:
  - types.go: Employee fixed-day fields
  - api/handlers.go: The generate endpoint that clears then generates
*/
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	defaultShiftStart    = "09:00"
	defaultShiftEnd      = "18:00"
	defaultShiftBreakMin = 60
)

// ShiftGenerator emits planned shifts from employee work-day patterns.
type ShiftGenerator struct {
	store Store
	clock func() time.Time
}

// NewShiftGenerator builds a generator. A nil clock means time.Now.
func NewShiftGenerator(store Store, clock func() time.Time) *ShiftGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &ShiftGenerator{store: store, clock: clock}
}

// Generate inserts shifts for the employees across the period and returns
// how many were created. Inactive employees are skipped entirely. A day
// both in FixedWorkDays and FixedDaysOff is a day off.
func (g *ShiftGenerator) Generate(ctx context.Context, employees []Employee, period Period) (int, error) {
	now := g.clock()
	created := 0

	for _, emp := range employees {
		if !emp.IsActive() {
			continue
		}
		start, end := emp.WorkStartTime, emp.WorkEndTime
		if start == "" {
			start = defaultShiftStart
		}
		if end == "" {
			end = defaultShiftEnd
		}

		for _, day := range period.Days() {
			if emp.IsDayOff(day.Weekday()) || !emp.WorksOn(day.Weekday()) {
				continue
			}
			shift := Shift{
				ID:            uuid.NewString(),
				EmployeeID:    emp.ID,
				Date:          DateKey(day),
				StartTime:     start,
				EndTime:       end,
				BreakDuration: defaultShiftBreakMin,
				Type:          ShiftRegular,
				Status:        ShiftScheduled,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := g.store.CreateShift(ctx, shift); err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}
