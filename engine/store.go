/*
store.go - Persistence interface for attendance data

PURPOSE:
  Defines the interface between the calculation core and the database.
  The engine never talks SQL; it consumes records through this contract.
  Different implementations can use SQLite or in-memory storage.

ORDERING CONTRACT:
  - GetTimeRecords returns records sorted by date DESCENDING (newest first).
  - GetShifts returns shifts sorted by date ASCENDING.
  Calculations group by date and do not depend on the order, but the API
  layer serves store output directly and relies on it.

DERIVED DATA:
  Hour buckets and payroll records are NOT persisted. They are recomputed
  on demand from the stored records, so a correction to a TimeRecord is
  reflected in the next computation with no patch-up step.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - engine/store/memory.go: In-memory for testing

SEE ALSO:
  - status.go: Writes TimeRecords through this interface
  - report.go: Reads everything through this interface
*/
package engine

import "context"

// =============================================================================
// STORE - Interface for attendance persistence
// =============================================================================

// Store handles persistence of employees, time records, shifts and wage rules.
type Store interface {
	// --- Employees ---

	// ListEmployees returns all employees, sorted by code.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// GetEmployee returns one employee or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id string) (*Employee, error)

	// SaveEmployee inserts or replaces an employee by ID.
	SaveEmployee(ctx context.Context, e Employee) error

	// DeleteEmployee removes an employee. ErrEmployeeNotFound if absent.
	DeleteEmployee(ctx context.Context, id string) error

	// --- Time records (actual clock events) ---

	// GetTimeRecords returns records for an employee inside the period,
	// sorted by date DESCENDING. An empty employeeID means all employees.
	GetTimeRecords(ctx context.Context, employeeID string, period Period) ([]TimeRecord, error)

	// OpenTimeRecord returns the employee's record still being shaped by
	// status transitions, or nil when the employee is offline.
	OpenTimeRecord(ctx context.Context, employeeID string) (*TimeRecord, error)

	// CreateTimeRecord persists a new record.
	CreateTimeRecord(ctx context.Context, r TimeRecord) error

	// UpdateTimeRecord replaces a record by ID. ErrRecordNotFound if absent.
	UpdateTimeRecord(ctx context.Context, r TimeRecord) error

	// --- Shifts (planned intervals) ---

	// GetShifts returns shifts for an employee inside the period, sorted by
	// date ASCENDING. An empty employeeID means all employees.
	GetShifts(ctx context.Context, employeeID string, period Period) ([]Shift, error)

	// CreateShift persists a new shift.
	CreateShift(ctx context.Context, s Shift) error

	// DeleteShiftsInRange removes an employee's shifts inside the period and
	// returns how many were removed. Supports regenerate-overwrite flows.
	DeleteShiftsInRange(ctx context.Context, employeeID string, period Period) (int, error)

	// --- Wage rules ---

	// ListWageRules returns all wage rules. Active-rule resolution happens
	// in the engine so ambiguity can be detected, not silently masked.
	ListWageRules(ctx context.Context) ([]WageRule, error)

	// SaveWageRule inserts or replaces a rule by ID.
	SaveWageRule(ctx context.Context, r WageRule) error
}
