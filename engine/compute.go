/*
compute.go - The attendance computation pipeline

PURPOSE:
  One pure entry point replaces the four near-identical create/update/bulk/
  legacy code paths of older attendance systems:

    resolve shift -> map breaks -> build blocks -> credit -> late deduction

  The engine is synchronous over injected read stores, holds no state, and
  re-resolves all reference data on every call. Callers own persistence,
  concurrency, and batching.

FAILURE CONTRACT:
  NoShiftFound and InvalidShiftTimes abort the row with a tagged error and no
  partial numbers. Deduction-lookup misses degrade to zero deduction with a
  diagnostic note. Malformed or empty punches are absence, never an error.
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// ComputeInput is one employee/date computation request.
type ComputeInput struct {
	EmployeeID EmployeeID
	Date       Date
	Punches    PunchCard

	// IsHoliday is an external input fact carried through to the result.
	// Holiday multipliers are applied by the surrounding system, never here.
	IsHoliday bool
}

// AttendanceEngine wires the pipeline over injected read collaborators.
type AttendanceEngine struct {
	Schedules  ScheduleStore
	Breaks     BreakStore
	Deductions DeductionStore
}

// Compute runs the full pipeline for one employee/date. Given identical
// inputs and reference data, the result is identical.
func (e *AttendanceEngine) Compute(ctx context.Context, in ComputeInput) (*AttendanceResult, error) {
	resolver := &ShiftResolver{Schedules: e.Schedules}
	resolved, err := resolver.Resolve(ctx, in.EmployeeID, in.Date)
	if err != nil {
		return nil, err
	}
	wt := resolved.WorkTime

	shift, err := NewInterval(in.Date, wt.StartTime, wt.EndTime)
	if err != nil {
		return nil, &InvalidShiftTimesError{WorkTimeID: wt.ID, Start: wt.StartTime, End: wt.EndTime}
	}

	defs, err := e.Breaks.FindBreaksForWorkTime(ctx, wt.ID)
	if err != nil {
		return nil, err
	}
	breaks, breakMinutes := MapBreaks(in.Date, shift, defs)
	set := BuildBlocks(shift, breaks)

	worked := AlignWorked(shift, WorkedIntervals(in.Date, in.Punches))
	credit := CalculateCredit(in.Date, wt, &set, worked)

	evaluator := &LateDeductionEvaluator{Deductions: e.Deductions}
	deduction, err := evaluator.Evaluate(ctx, in.Date, wt, set, worked)
	if err != nil {
		return nil, err
	}

	daysCredited := credit.DaysCredited
	if deduction.DeductedDays.IsPositive() {
		remaining := daysCredited.Sub(deduction.DeductedDays)
		daysCredited = TruncFrac2(remaining)
		if daysCredited.IsNegative() {
			daysCredited = decimal.Zero
		}
	}

	return &AttendanceResult{
		EmployeeID:            in.EmployeeID,
		Date:                  in.Date,
		AppliedBreakMinutes:   breakMinutes,
		NetWorkMinutes:        set.CreditBasisMinutes(),
		ActualRenderedMinutes: int(credit.ActualWorkedSeconds / 60),
		DaysCredited:          daysCredited,
		EarlyOut:              credit.EarlyOut,
		IsHolidayAttendance:   in.IsHoliday,
		LateDeductionID:       deduction.LastRuleID,
		LateDeductionValue:    deduction.TotalFraction,
		DeductedDays:          deduction.DeductedDays,
		Diagnostics: Diagnostics{
			Blocks:               set.Blocks,
			AppliedRules:         deduction.Applied,
			IgnoredLateInSeconds: credit.IgnoredLateSeconds,
			Candidates:           resolved.Candidates,
			Notes:                deduction.Notes,
		},
	}, nil
}
