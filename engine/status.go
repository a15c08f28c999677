/*
status.go - The live work-status state machine

PURPOSE:
  Tracks each employee's live status (offline / working / break / overtime)
  and shapes the day's TimeRecord as the employee moves between states.

LEGAL EDGES:
  offline  -> working    clock in: creates the day's record
  working  -> break      break start: stamps BreakStart
  break    -> working    break end: folds the open break into BreakDuration
  working  -> overtime   past the daily threshold (checked, not timed)
  any non-offline -> offline   clock out: completes the record

  Everything else is rejected with InvalidTransitionError and the state is
  left untouched. In particular break -> offline is legal (the open break is
  folded in first) but offline -> break and offline -> overtime are not, and
  overtime allows only the clock-out edge.

ONE OPEN RECORD:
  An employee has at most one open TimeRecord. Clocking in while one is
  open is an illegal transition; the open record must be completed first.

SEE ALSO:
  - types.go: TimeRecord lifecycle statuses
  - hours.go: Consumes the completed records
*/
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRACKER
// =============================================================================

// Tracker is the in-process state machine over all employees. Statuses live
// in memory; the record being shaped is persisted through the Store on every
// transition so a restart can rebuild state from open records.
type Tracker struct {
	store Store
	clock func() time.Time

	// overtimeThreshold is in hours; past it CheckOvertime moves
	// working -> overtime.
	overtimeThreshold float64

	mu    sync.Mutex
	state map[string]WorkStatus
}

// NewTracker builds a tracker over the store. A nil clock means time.Now.
func NewTracker(store Store, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		store:             store,
		clock:             clock,
		overtimeThreshold: DefaultOvertimeThreshold,
		state:             make(map[string]WorkStatus),
	}
}

// Status returns the employee's live status. Unknown employees are offline.
func (t *Tracker) Status(employeeID string) WorkStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.state[employeeID]; ok {
		return s
	}
	return StatusOffline
}

// Restore seeds the tracker from the store's open records. Call once at
// startup before serving transitions.
func (t *Tracker) Restore(ctx context.Context, employeeIDs []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range employeeIDs {
		rec, err := t.store.OpenTimeRecord(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}
		switch rec.Status {
		case RecordBreak:
			t.state[id] = StatusBreak
		default:
			t.state[id] = StatusWorking
		}
	}
	return nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

var legalEdges = map[WorkStatus][]WorkStatus{
	StatusOffline:  {StatusWorking},
	StatusWorking:  {StatusBreak, StatusOvertime, StatusOffline},
	StatusBreak:    {StatusWorking, StatusOffline},
	StatusOvertime: {StatusOffline},
}

func canTransition(from, to WorkStatus) bool {
	for _, t := range legalEdges[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Transition moves an employee to a new status, shaping the day's TimeRecord
// along the way, and returns the record as persisted. Illegal edges return
// InvalidTransitionError and leave both status and record untouched.
func (t *Tracker) Transition(ctx context.Context, employeeID string, to WorkStatus) (*TimeRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	from := t.state[employeeID]
	if from == "" {
		from = StatusOffline
	}
	if !canTransition(from, to) {
		return nil, &InvalidTransitionError{EmployeeID: employeeID, From: from, To: to}
	}

	now := t.clock()

	if from == StatusOffline {
		// Clock in.
		rec := TimeRecord{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			Date:       DateKey(now),
			ClockIn:    &now,
			Status:     RecordWorking,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := t.store.CreateTimeRecord(ctx, rec); err != nil {
			return nil, err
		}
		t.state[employeeID] = StatusWorking
		return &rec, nil
	}

	rec, err := t.store.OpenTimeRecord(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		// Status says on the clock but no open record backs it. Treat as
		// an illegal move rather than invent a record.
		return nil, &InvalidTransitionError{EmployeeID: employeeID, From: from, To: to}
	}

	switch to {
	case StatusBreak:
		rec.BreakStart = &now
		rec.Status = RecordBreak

	case StatusWorking, StatusOvertime:
		t.foldOpenBreak(rec, now)
		rec.Status = RecordWorking

	case StatusOffline:
		// Clock out. Fold any open break, then derive stored hours.
		t.foldOpenBreak(rec, now)
		rec.ClockOut = &now
		rec.Status = RecordCompleted
		if rec.ClockIn != nil {
			hours, herr := WorkingHours(*rec.ClockIn, now, rec.BreakDuration)
			if herr != nil {
				return nil, herr
			}
			regular, overtime := OvertimeSplit(hours, t.overtimeThreshold)
			rec.WorkingHours = regular + overtime
			rec.OvertimeHours = overtime
		}
	}

	rec.UpdatedAt = now
	if err := t.store.UpdateTimeRecord(ctx, *rec); err != nil {
		return nil, err
	}
	t.state[employeeID] = to
	return rec, nil
}

// foldOpenBreak accumulates an open break into BreakDuration and clears the
// marker. No-op when no break is open.
func (t *Tracker) foldOpenBreak(rec *TimeRecord, now time.Time) {
	if rec.BreakStart == nil {
		return
	}
	minutes := int(now.Sub(*rec.BreakStart).Minutes())
	if minutes > 0 {
		rec.BreakDuration += minutes
	}
	rec.BreakStart = nil
}

// CheckOvertime moves a working employee to overtime when the open record's
// elapsed net hours pass the threshold. Returns whether the move happened.
// Employees not in working state are left alone.
func (t *Tracker) CheckOvertime(ctx context.Context, employeeID string) (bool, error) {
	t.mu.Lock()
	if t.state[employeeID] != StatusWorking {
		t.mu.Unlock()
		return false, nil
	}
	t.mu.Unlock()

	rec, err := t.store.OpenTimeRecord(ctx, employeeID)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.ClockIn == nil {
		return false, nil
	}
	hours, err := WorkingHours(*rec.ClockIn, t.clock(), rec.BreakDuration)
	if err != nil {
		return false, err
	}
	if hours <= t.overtimeThreshold {
		return false, nil
	}
	if _, err := t.Transition(ctx, employeeID, StatusOvertime); err != nil {
		return false, err
	}
	return true, nil
}
