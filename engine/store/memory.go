// Package store provides an in-memory implementation of the engine's
// persistence interfaces, used by tests, seeding, and dev mode.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// MEMORY STORE - RWMutex'd maps, copy-out reads
// =============================================================================

type punchKey struct {
	EmployeeID engine.EmployeeID
	Date       string
}

type Memory struct {
	mu        sync.RWMutex
	workTimes map[engine.WorkTimeID]engine.WorkTime
	schedules []engine.ShiftSchedule
	breakDefs map[engine.BreakID]engine.BreakDefinition
	breakMap  map[engine.WorkTimeID][]engine.BreakID
	tiers     []engine.LateDeductionTier
	rules     map[engine.TierID][]engine.LateDeductionRule
	punches   map[punchKey]engine.PunchRow
	results   map[punchKey]engine.AttendanceResult
	audit     []engine.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{
		workTimes: make(map[engine.WorkTimeID]engine.WorkTime),
		breakDefs: make(map[engine.BreakID]engine.BreakDefinition),
		breakMap:  make(map[engine.WorkTimeID][]engine.BreakID),
		rules:     make(map[engine.TierID][]engine.LateDeductionRule),
		punches:   make(map[punchKey]engine.PunchRow),
		results:   make(map[punchKey]engine.AttendanceResult),
	}
}

// =============================================================================
// SETUP - Reference-data writers (breaks the read-only contract on purpose;
// only seeding and tests call these)
// =============================================================================

func (m *Memory) PutWorkTime(_ context.Context, wt engine.WorkTime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workTimes[wt.ID] = wt
	return nil
}

func (m *Memory) PutSchedule(_ context.Context, s engine.ShiftSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.schedules {
		if existing.ID == s.ID {
			m.schedules[i] = s
			return nil
		}
	}
	m.schedules = append(m.schedules, s)
	return nil
}

func (m *Memory) PutBreak(_ context.Context, def engine.BreakDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakDefs[def.ID] = def
	return nil
}

func (m *Memory) MapBreak(_ context.Context, workTimeID engine.WorkTimeID, breakID engine.BreakID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakMap[workTimeID] = append(m.breakMap[workTimeID], breakID)
	return nil
}

func (m *Memory) PutTier(_ context.Context, t engine.LateDeductionTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers = append(m.tiers, t)
	return nil
}

func (m *Memory) PutRule(_ context.Context, r engine.LateDeductionRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[r.TierID] = append(m.rules[r.TierID], r)
	sort.Slice(m.rules[r.TierID], func(i, j int) bool {
		return m.rules[r.TierID][i].MinMinutes < m.rules[r.TierID][j].MinMinutes
	})
	return nil
}

func (m *Memory) PutPunch(_ context.Context, row engine.PunchRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.punches[punchKey{row.EmployeeID, row.Date.String()}] = row
	return nil
}

// =============================================================================
// engine.ScheduleStore
// =============================================================================

func (m *Memory) FindShiftAssignments(_ context.Context, employeeID engine.EmployeeID, date engine.Date) ([]engine.ShiftSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []engine.ShiftSchedule
	for _, s := range m.schedules {
		if s.EmployeeID != employeeID || !s.IsActive {
			continue
		}
		if date.Before(s.EffectiveDate) {
			continue
		}
		if s.EndDate != nil && !s.EndDate.IsZero() && s.EndDate.Before(date) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) FindDefaultWorkTime(_ context.Context) (*engine.WorkTime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, wt := range m.workTimes {
		if wt.IsDefault {
			copied := wt
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) FindWorkTime(_ context.Context, id engine.WorkTimeID) (*engine.WorkTime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if wt, ok := m.workTimes[id]; ok {
		copied := wt
		return &copied, nil
	}
	return nil, nil
}

// =============================================================================
// engine.BreakStore
// =============================================================================

func (m *Memory) FindBreaksForWorkTime(_ context.Context, id engine.WorkTimeID) ([]engine.BreakDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []engine.BreakDefinition
	for _, bid := range m.breakMap[id] {
		if def, ok := m.breakDefs[bid]; ok {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// =============================================================================
// engine.DeductionStore
// =============================================================================

func (m *Memory) FindTier(_ context.Context, workTimeID engine.WorkTimeID, blockIndex int) (*engine.LateDeductionTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tiers {
		if t.WorkTimeID == workTimeID && t.BlockIndex == blockIndex {
			copied := t
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) FindRules(_ context.Context, tierID engine.TierID) ([]engine.LateDeductionRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.LateDeductionRule, len(m.rules[tierID]))
	copy(out, m.rules[tierID])
	return out, nil
}

// =============================================================================
// engine.PunchStore
// =============================================================================

func (m *Memory) FindPunches(_ context.Context, employeeID engine.EmployeeID, date engine.Date) (*engine.PunchRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if row, ok := m.punches[punchKey{employeeID, date.String()}]; ok {
		copied := row
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) ListPunchesForMonth(_ context.Context, year int, month int) ([]engine.PunchRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []engine.PunchRow
	for _, row := range m.punches {
		if row.Date.Year() == year && int(row.Date.Month()) == month {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// =============================================================================
// engine.ResultStore / engine.AuditLog
// =============================================================================

func (m *Memory) UpsertResult(_ context.Context, result engine.AttendanceResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[punchKey{result.EmployeeID, result.Date.String()}] = result
	return nil
}

// GetResult returns the stored result for employee/date, or nil.
func (m *Memory) GetResult(_ context.Context, employeeID engine.EmployeeID, date engine.Date) (*engine.AttendanceResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, ok := m.results[punchKey{employeeID, date.String()}]; ok {
		copied := r
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) Append(_ context.Context, entry engine.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

// AuditEntries returns a copy of the audit trail.
func (m *Memory) AuditEntries() []engine.AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.AuditEntry, len(m.audit))
	copy(out, m.audit)
	return out
}

// ListWorkTimes returns every configured shift, ordered by ID.
func (m *Memory) ListWorkTimes(_ context.Context) ([]engine.WorkTime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.WorkTime, 0, len(m.workTimes))
	for _, wt := range m.workTimes {
		out = append(out, wt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
