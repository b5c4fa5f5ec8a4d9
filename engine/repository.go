/*
repository.go - Persistence interfaces the engine depends on

PURPOSE:
  The engine is pure: it reads reference data through these interfaces and
  returns a result value. Implementations:
  - store/sqlite:       production SQLite store
  - engine/store:       in-memory store for tests, seeding, and dev mode

CONTRACT:
  Reference data (shifts, breaks, schedules, tiers, rules) is read-only from
  the engine's view. Every computation re-resolves from current configuration;
  no cross-call caching, so results stay reproducible. Lookup misses return
  (nil, nil), not an error: absence is a domain condition, not a failure.
*/
package engine

import "context"

// =============================================================================
// READ COLLABORATORS
// =============================================================================

// ScheduleStore resolves shift reference data.
type ScheduleStore interface {
	// FindShiftAssignments returns the active assignments for an employee
	// whose effective window covers date (effective_date <= date and end_date
	// unset or >= date), in no particular order.
	FindShiftAssignments(ctx context.Context, employeeID EmployeeID, date Date) ([]ShiftSchedule, error)

	// FindDefaultWorkTime returns the fallback shift, or nil when none is
	// configured.
	FindDefaultWorkTime(ctx context.Context) (*WorkTime, error)

	// FindWorkTime returns a shift by ID, or nil when missing.
	FindWorkTime(ctx context.Context, id WorkTimeID) (*WorkTime, error)
}

// BreakStore resolves break reference data.
type BreakStore interface {
	// FindBreaksForWorkTime returns the breaks mapped to a shift, ordered by
	// start time.
	FindBreaksForWorkTime(ctx context.Context, id WorkTimeID) ([]BreakDefinition, error)
}

// DeductionStore resolves the late-deduction rule book.
type DeductionStore interface {
	// FindTier returns the tier for (work time, block index), or nil. Callers
	// fall back to blockIndex 0 (the wildcard tier) themselves.
	FindTier(ctx context.Context, workTimeID WorkTimeID, blockIndex int) (*LateDeductionTier, error)

	// FindRules returns a tier's rules ordered by MinMinutes ascending.
	FindRules(ctx context.Context, tierID TierID) ([]LateDeductionRule, error)
}

// PunchStore reads stored punch rows (batch recalculation input).
type PunchStore interface {
	// FindPunches returns the punch row for employee/date, or nil.
	FindPunches(ctx context.Context, employeeID EmployeeID, date Date) (*PunchRow, error)

	// ListPunchesForMonth returns all punch rows in a month ordered by
	// (employee, date).
	ListPunchesForMonth(ctx context.Context, year int, month int) ([]PunchRow, error)
}

// =============================================================================
// WRITE COLLABORATORS
// =============================================================================

// ResultStore persists computed results. UpsertResult is the per-row
// transaction unit: batch callers invoke it once per row so one failure never
// aborts the rest. Two concurrent upserts for the same (employee, date) are
// the store's problem to serialize.
type ResultStore interface {
	UpsertResult(ctx context.Context, result AttendanceResult) error
}

// AuditLog records human-readable computation entries. Best effort; audit
// failures must not fail the computation.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
}

// AuditEntry is a cosmetic trail row. Text formatting belongs to callers.
type AuditEntry struct {
	EmployeeID EmployeeID
	Date       Date
	Action     string
	Detail     string
}
