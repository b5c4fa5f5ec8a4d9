/*
resolver.go - Effective shift resolution

PURPOSE:
  An employee may hold many recurring schedule assignments; exactly one shift
  applies per date. Resolution:
  1. Load active assignments whose effective window covers the date.
  2. Keep those whose recurrence rule fires on the date.
  3. No match  -> the single default WorkTime; none configured -> NoShiftFound.
  4. Matches   -> highest priority wins; ties broken by latest effective date,
                  then by highest assignment ID (latest created).

  The full candidate list is retained on the resolution for diagnostics:
  payroll disputes start with "why did this shift apply?".
*/
package engine

import (
	"context"
	"fmt"
	"sort"
)

// ResolvedShift is the outcome of shift resolution for one employee/date.
type ResolvedShift struct {
	WorkTime   WorkTime
	Assignment *ShiftSchedule // nil when the default shift was used

	// Candidates are the window-covering assignments that were examined,
	// matched or not. Diagnostics only.
	Candidates []ShiftSchedule
}

// ShiftResolver finds the single effective shift for an employee and date.
type ShiftResolver struct {
	Schedules ScheduleStore
}

// Resolve returns the effective shift or a NoShiftFoundError.
func (sr *ShiftResolver) Resolve(ctx context.Context, employeeID EmployeeID, date Date) (*ResolvedShift, error) {
	candidates, err := sr.Schedules.FindShiftAssignments(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}

	var matched []ShiftSchedule
	for _, s := range candidates {
		if !s.IsActive || !coversDate(s, date) {
			continue
		}
		if RuleFor(s).Matches(s.EffectiveDate, date) {
			matched = append(matched, s)
		}
	}

	if len(matched) == 0 {
		return sr.resolveDefault(ctx, employeeID, date, candidates)
	}

	// Highest priority, then latest effective date, then highest ID.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.EffectiveDate.Equal(b.EffectiveDate) {
			return a.EffectiveDate.After(b.EffectiveDate)
		}
		return a.ID > b.ID
	})
	winner := matched[0]

	wt, err := sr.Schedules.FindWorkTime(ctx, winner.WorkTimeID)
	if err != nil {
		return nil, fmt.Errorf("load work time %s: %w", winner.WorkTimeID, err)
	}
	if wt == nil {
		// Dangling assignment; treat like no match rather than failing the row
		// on reference-data drift.
		return sr.resolveDefault(ctx, employeeID, date, candidates)
	}

	return &ResolvedShift{WorkTime: *wt, Assignment: &winner, Candidates: candidates}, nil
}

func (sr *ShiftResolver) resolveDefault(ctx context.Context, employeeID EmployeeID, date Date, candidates []ShiftSchedule) (*ResolvedShift, error) {
	def, err := sr.Schedules.FindDefaultWorkTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("load default work time: %w", err)
	}
	if def == nil {
		return nil, &NoShiftFoundError{EmployeeID: employeeID, Date: date, Candidates: len(candidates)}
	}
	return &ResolvedShift{WorkTime: *def, Candidates: candidates}, nil
}

// coversDate re-checks the effective window; stores already filter on it but
// the memory store and resolver must agree on sentinel end dates.
func coversDate(s ShiftSchedule, date Date) bool {
	if date.Before(s.EffectiveDate) {
		return false
	}
	if s.EndDate == nil || s.EndDate.IsZero() {
		return true
	}
	return s.EndDate.AfterOrEqual(date)
}
