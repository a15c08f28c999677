/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers should wrap these errors with additional context.

ERROR CATEGORIES:
  1. Interval errors - Malformed clock events or periods
  2. Transition errors - Illegal work-status moves
  3. Rule errors - Wage-rule resolution failures
  4. Record errors - Attendance data quality signals

USAGE:
  Callers can test categories with errors.Is():

    if errors.Is(err, engine.ErrInvalidTransition) {
        // respond 409, state unchanged
    }

SEE ALSO:
  - status.go: Produces InvalidTransitionError
  - hours.go:  Produces MissingPairError (as an anomaly, not a failure)
  - wage.go:   Produces rule resolution errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when a clock-out precedes its clock-in,
	// or a period's end precedes its start.
	ErrInvalidInterval = errors.New("invalid interval: end before start")

	// ErrInvalidTransition is returned when a work-status move is not a
	// legal edge of the state machine. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoActiveWageRule is returned when pay computation finds zero
	// active wage rules. Pay cannot be computed without one.
	ErrNoActiveWageRule = errors.New("no active wage rule")

	// ErrAmbiguousWageRule is returned when more than one wage rule is
	// active at once. The store invariant is at-most-one.
	ErrAmbiguousWageRule = errors.New("ambiguous wage rules: multiple active")

	// ErrMissingPair marks a record with a dangling clock-in or clock-out.
	// Such records contribute zero hours and surface as anomalies.
	ErrMissingPair = errors.New("missing clock pair")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRecordNotFound is returned when a referenced record doesn't exist.
	ErrRecordNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTransitionError reports the rejected edge of a status move.
type InvalidTransitionError struct {
	EmployeeID string
	From       WorkStatus
	To         WorkStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s (employee %s)",
		e.From, e.To, e.EmployeeID)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// MissingPairError describes a record with only one side of a clock pair.
// It is collected into HourBucket.Anomalies rather than aborting a report.
type MissingPairError struct {
	EmployeeID  string
	Date        string
	HasClockIn  bool
	HasClockOut bool
}

func (e *MissingPairError) Error() string {
	side := "clock-out"
	if e.HasClockOut && !e.HasClockIn {
		side = "clock-in"
	}
	return fmt.Sprintf("missing %s: %s on %s", side, e.EmployeeID, e.Date)
}

func (e *MissingPairError) Unwrap() error {
	return ErrMissingPair
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAmbiguousWageRule)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
