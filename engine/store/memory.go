// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kintai/attendance-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[string]engine.Employee
	records   map[string]engine.TimeRecord // by record ID
	shifts    map[string]engine.Shift      // by shift ID
	rules     map[string]engine.WageRule
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[string]engine.Employee),
		records:   make(map[string]engine.TimeRecord),
		shifts:    make(map[string]engine.Shift),
		rules:     make(map[string]engine.WageRule),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) ListEmployees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *Memory) GetEmployee(_ context.Context, id string) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, engine.ErrEmployeeNotFound
	}
	return &e, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return engine.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

// =============================================================================
// TIME RECORDS
// =============================================================================

// GetTimeRecords returns matching records sorted by date descending.
func (m *Memory) GetTimeRecords(_ context.Context, employeeID string, period engine.Period) ([]engine.TimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.TimeRecord
	for _, r := range m.records {
		if employeeID != "" && r.EmployeeID != employeeID {
			continue
		}
		if !period.ContainsDate(r.Date) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) OpenTimeRecord(_ context.Context, employeeID string) (*engine.TimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.Open() {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateTimeRecord(_ context.Context, r engine.TimeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = r
	return nil
}

func (m *Memory) UpdateTimeRecord(_ context.Context, r engine.TimeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[r.ID]; !ok {
		return engine.ErrRecordNotFound
	}
	m.records[r.ID] = r
	return nil
}

// =============================================================================
// SHIFTS
// =============================================================================

// GetShifts returns matching shifts sorted by date ascending.
func (m *Memory) GetShifts(_ context.Context, employeeID string, period engine.Period) ([]engine.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.Shift
	for _, s := range m.shifts {
		if employeeID != "" && s.EmployeeID != employeeID {
			continue
		}
		if !period.ContainsDate(s.Date) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) CreateShift(_ context.Context, s engine.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.ID] = s
	return nil
}

func (m *Memory) DeleteShiftsInRange(_ context.Context, employeeID string, period engine.Period) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, s := range m.shifts {
		if employeeID != "" && s.EmployeeID != employeeID {
			continue
		}
		if !period.ContainsDate(s.Date) {
			continue
		}
		delete(m.shifts, id)
		deleted++
	}
	return deleted, nil
}

// =============================================================================
// WAGE RULES
// =============================================================================

func (m *Memory) ListWageRules(_ context.Context) ([]engine.WageRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.WageRule, 0, len(m.rules))
	for _, r := range m.rules {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) SaveWageRule(_ context.Context, r engine.WageRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[r.ID] = r
	return nil
}
