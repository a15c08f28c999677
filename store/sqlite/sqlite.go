/*
Package sqlite provides a SQLite-backed implementation of engine.Store.

PURPOSE:
  Persists employees, time records, shifts and wage rules using SQLite.
  The calculation core only ever sees the engine.Store interface; all SQL
  lives here.

KEY TABLES:
  employees:    Roster with wage and fixed work-day patterns
  time_records: Actual clock events, one row per employee per day
  shifts:       Planned work intervals
  wage_rules:   Pay multiplier configurations

ORDERING:
  time_records queries return date DESC, shifts date ASC, matching the
  engine.Store contract.

ENCODING:
  Weekday sets and rule conditions are stored as JSON text. Wage amounts
  are stored as decimal strings, never floats. Instants are RFC3339,
  date keys YYYY-MM-DD.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definition
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kintai/attendance-engine/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		role TEXT,
		department TEXT,
		hourly_wage TEXT NOT NULL,
		hire_date TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		fixed_work_days TEXT,
		fixed_days_off TEXT,
		work_start_time TEXT,
		work_end_time TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_code ON employees(code);
	CREATE INDEX IF NOT EXISTS idx_employees_status ON employees(status);

	-- Time records (actual clock events)
	CREATE TABLE IF NOT EXISTS time_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		clock_in TEXT,
		clock_out TEXT,
		break_start TEXT,
		break_duration INTEGER NOT NULL DEFAULT 0,
		working_hours REAL NOT NULL DEFAULT 0,
		overtime_hours REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		notes TEXT,
		approved_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path: monthly per-employee queries, newest first
	CREATE INDEX IF NOT EXISTS idx_time_records_employee_date
		ON time_records(employee_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_time_records_date
		ON time_records(date);
	CREATE INDEX IF NOT EXISTS idx_time_records_status
		ON time_records(status);

	-- Shifts (planned intervals)
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		break_duration INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_employee_date
		ON shifts(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_shifts_date
		ON shifts(date);

	-- Wage rules
	CREATE TABLE IF NOT EXISTS wage_rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_rate TEXT NOT NULL,
		overtime_rate REAL NOT NULL,
		night_rate REAL NOT NULL,
		holiday_rate REAL NOT NULL,
		night_start_hour INTEGER NOT NULL,
		night_end_hour INTEGER NOT NULL,
		rounding_minutes INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT FALSE,
		conditions_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_wage_rules_active ON wage_rules(active);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, code, name, email, role, department, hourly_wage,
	hire_date, status, fixed_work_days, fixed_days_off,
	work_start_time, work_end_time, created_at, updated_at`

// SaveEmployee inserts or replaces an employee by ID.
func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			department = excluded.department,
			hourly_wage = excluded.hourly_wage,
			hire_date = excluded.hire_date,
			status = excluded.status,
			fixed_work_days = excluded.fixed_work_days,
			fixed_days_off = excluded.fixed_days_off,
			work_start_time = excluded.work_start_time,
			work_end_time = excluded.work_end_time,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	createdAt := now
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Code, e.Name, e.Email, e.Role, e.Department,
		e.HourlyWage.String(),
		e.HireDate, string(e.Status),
		weekdaysJSON(e.FixedWorkDays), weekdaysJSON(e.FixedDaysOff),
		e.WorkStartTime, e.WorkEndTime,
		createdAt, now,
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEmployees returns all employees sorted by code.
func (s *Store) ListEmployees(ctx context.Context) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []engine.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrEmployeeNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*engine.Employee, error) {
	var (
		e                      engine.Employee
		email, role, dept      sql.NullString
		wage                   string
		hireDate, status       sql.NullString
		workDays, daysOff      sql.NullString
		startTime, endTime     sql.NullString
		createdAt, updatedAt   string
	)

	err := row.Scan(&e.ID, &e.Code, &e.Name, &email, &role, &dept, &wage,
		&hireDate, &status, &workDays, &daysOff, &startTime, &endTime,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	e.Email = email.String
	e.Role = role.String
	e.Department = dept.String
	e.HourlyWage, err = decimal.NewFromString(wage)
	if err != nil {
		return nil, fmt.Errorf("invalid hourly_wage %q: %w", wage, err)
	}
	e.HireDate = hireDate.String
	e.Status = engine.EmployeeStatus(status.String)
	e.FixedWorkDays = parseWeekdays(workDays.String)
	e.FixedDaysOff = parseWeekdays(daysOff.String)
	e.WorkStartTime = startTime.String
	e.WorkEndTime = endTime.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &e, nil
}

// =============================================================================
// TIME RECORDS
// =============================================================================

const recordColumns = `id, employee_id, date, clock_in, clock_out, break_start,
	break_duration, working_hours, overtime_hours, status, notes, approved_by,
	created_at, updated_at`

// CreateTimeRecord persists a new record.
func (s *Store) CreateTimeRecord(ctx context.Context, r engine.TimeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO time_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, r.Date,
		nullTime(r.ClockIn), nullTime(r.ClockOut), nullTime(r.BreakStart),
		r.BreakDuration, r.WorkingHours, r.OvertimeHours,
		string(r.Status), r.Notes, r.ApprovedBy,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// UpdateTimeRecord replaces a record by ID.
func (s *Store) UpdateTimeRecord(ctx context.Context, r engine.TimeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE time_records SET
			employee_id = ?, date = ?, clock_in = ?, clock_out = ?,
			break_start = ?, break_duration = ?, working_hours = ?,
			overtime_hours = ?, status = ?, notes = ?, approved_by = ?,
			updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		r.EmployeeID, r.Date,
		nullTime(r.ClockIn), nullTime(r.ClockOut), nullTime(r.BreakStart),
		r.BreakDuration, r.WorkingHours, r.OvertimeHours,
		string(r.Status), r.Notes, r.ApprovedBy,
		r.UpdatedAt.UTC().Format(time.RFC3339),
		r.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrRecordNotFound
	}
	return nil
}

// GetTimeRecords returns matching records sorted by date descending.
func (s *Store) GetTimeRecords(ctx context.Context, employeeID string, period engine.Period) ([]engine.TimeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + recordColumns + ` FROM time_records
		WHERE date >= ? AND date <= ?
	`
	args := []any{engine.DateKey(period.Start), engine.DateKey(period.End)}
	if employeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY date DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.TimeRecord
	for rows.Next() {
		r, err := scanTimeRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// OpenTimeRecord returns the employee's record still in a live status, or nil.
func (s *Store) OpenTimeRecord(ctx context.Context, employeeID string) (*engine.TimeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + recordColumns + ` FROM time_records
		WHERE employee_id = ? AND status IN ('working', 'break')
		ORDER BY date DESC LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query, employeeID)
	r, err := scanTimeRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func scanTimeRecord(row rowScanner) (*engine.TimeRecord, error) {
	var (
		r                          engine.TimeRecord
		clockIn, clockOut, brkStart sql.NullString
		notes, approvedBy          sql.NullString
		createdAt, updatedAt       string
	)

	err := row.Scan(&r.ID, &r.EmployeeID, &r.Date, &clockIn, &clockOut,
		&brkStart, &r.BreakDuration, &r.WorkingHours, &r.OvertimeHours,
		&r.Status, &notes, &approvedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	r.ClockIn = parseNullTime(clockIn)
	r.ClockOut = parseNullTime(clockOut)
	r.BreakStart = parseNullTime(brkStart)
	r.Notes = notes.String
	r.ApprovedBy = approvedBy.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

const shiftColumns = `id, employee_id, date, start_time, end_time,
	break_duration, type, status, notes, created_at, updated_at`

// CreateShift persists a new shift.
func (s *Store) CreateShift(ctx context.Context, sh engine.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO shifts (` + shiftColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		sh.ID, sh.EmployeeID, sh.Date, sh.StartTime, sh.EndTime,
		sh.BreakDuration, string(sh.Type), string(sh.Status), sh.Notes,
		sh.CreatedAt.UTC().Format(time.RFC3339),
		sh.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetShifts returns matching shifts sorted by date ascending.
func (s *Store) GetShifts(ctx context.Context, employeeID string, period engine.Period) ([]engine.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + shiftColumns + ` FROM shifts
		WHERE date >= ? AND date <= ?
	`
	args := []any{engine.DateKey(period.Start), engine.DateKey(period.End)}
	if employeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []engine.Shift
	for rows.Next() {
		var (
			sh                   engine.Shift
			notes                sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&sh.ID, &sh.EmployeeID, &sh.Date, &sh.StartTime,
			&sh.EndTime, &sh.BreakDuration, &sh.Type, &sh.Status, &notes,
			&createdAt, &updatedAt); err != nil {
			return nil, err
		}
		sh.Notes = notes.String
		sh.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sh.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// DeleteShiftsInRange removes an employee's shifts inside the period.
func (s *Store) DeleteShiftsInRange(ctx context.Context, employeeID string, period engine.Period) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "DELETE FROM shifts WHERE date >= ? AND date <= ?"
	args := []any{engine.DateKey(period.Start), engine.DateKey(period.End)}
	if employeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, employeeID)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// =============================================================================
// WAGE RULES
// =============================================================================

const ruleColumns = `id, name, base_rate, overtime_rate, night_rate,
	holiday_rate, night_start_hour, night_end_hour, rounding_minutes,
	active, conditions_json, created_at, updated_at`

// SaveWageRule inserts or replaces a rule by ID.
func (s *Store) SaveWageRule(ctx context.Context, r engine.WageRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conditionsJSON, err := json.Marshal(r.Conditions)
	if err != nil {
		return fmt.Errorf("failed to encode conditions: %w", err)
	}

	query := `
		INSERT INTO wage_rules (` + ruleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_rate = excluded.base_rate,
			overtime_rate = excluded.overtime_rate,
			night_rate = excluded.night_rate,
			holiday_rate = excluded.holiday_rate,
			night_start_hour = excluded.night_start_hour,
			night_end_hour = excluded.night_end_hour,
			rounding_minutes = excluded.rounding_minutes,
			active = excluded.active,
			conditions_json = excluded.conditions_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	createdAt := now
	if !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.Name, r.BaseRate.String(),
		r.OvertimeRate, r.NightRate, r.HolidayRate,
		r.NightStartHour, r.NightEndHour, r.RoundingMinutes,
		r.Active, string(conditionsJSON),
		createdAt, now,
	)
	return err
}

// ListWageRules returns all wage rules sorted by name.
func (s *Store) ListWageRules(ctx context.Context) ([]engine.WageRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ruleColumns+" FROM wage_rules ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []engine.WageRule
	for rows.Next() {
		var (
			r                    engine.WageRule
			baseRate             string
			conditionsJSON       sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&r.ID, &r.Name, &baseRate, &r.OvertimeRate,
			&r.NightRate, &r.HolidayRate, &r.NightStartHour, &r.NightEndHour,
			&r.RoundingMinutes, &r.Active, &conditionsJSON,
			&createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.BaseRate, err = decimal.NewFromString(baseRate)
		if err != nil {
			return nil, fmt.Errorf("invalid base_rate %q: %w", baseRate, err)
		}
		if conditionsJSON.Valid && conditionsJSON.String != "" {
			if err := json.Unmarshal([]byte(conditionsJSON.String), &r.Conditions); err != nil {
				return nil, fmt.Errorf("invalid conditions_json: %w", err)
			}
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"time_records", "shifts", "wage_rules", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func weekdaysJSON(days []time.Weekday) string {
	if len(days) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(days)
	return string(b)
}

func parseWeekdays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	if err := json.Unmarshal([]byte(s), &days); err != nil {
		return nil
	}
	if len(days) == 0 {
		return nil
	}
	return days
}
