package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/engine/store"
)

// =============================================================================
// TEST SETUP - A standard 09:00-18:00 day shift with a splitting lunch
// =============================================================================

func newComputeFixture(t *testing.T) (*engine.AttendanceEngine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.PutWorkTime(ctx, engine.WorkTime{
		ID:           "wt-day",
		Name:         "Day Shift",
		StartTime:    engine.MustClock("09:00:00"),
		EndTime:      engine.MustClock("18:00:00"),
		TotalMinutes: 480,
		ValidInEnd:   engine.MustClock("09:05:00"),
	}))
	require.NoError(t, mem.PutBreak(ctx, engine.BreakDefinition{
		ID:              "br-lunch",
		Name:            "Lunch",
		StartTime:       engine.MustClock("12:00:00"),
		EndTime:         engine.MustClock("13:00:00"),
		ValidBreakInEnd: engine.MustClock("13:10:00"),
		IsShiftSplit:    true,
	}))
	require.NoError(t, mem.MapBreak(ctx, "wt-day", "br-lunch"))

	require.NoError(t, mem.PutSchedule(ctx, engine.ShiftSchedule{
		ID:            "sched-1",
		EmployeeID:    "emp-1",
		WorkTimeID:    "wt-day",
		EffectiveDate: date(2024, time.March, 1),
		Recurrence:    engine.RecurrenceDaily,
		IsActive:      true,
	}))

	require.NoError(t, mem.PutTier(ctx, engine.LateDeductionTier{
		ID: "tier-b1", WorkTimeID: "wt-day", BlockIndex: 1, Name: "Morning",
	}))
	require.NoError(t, mem.PutTier(ctx, engine.LateDeductionTier{
		ID: "tier-b2", WorkTimeID: "wt-day", BlockIndex: 2, Name: "Afternoon",
	}))
	min19, min59 := 19, 59
	require.NoError(t, mem.PutRule(ctx, engine.LateDeductionRule{
		ID: "rule-10", TierID: "tier-b1", MinMinutes: 10, MaxMinutes: &min19,
		DeductionValue: decimal.RequireFromString("0.05"),
	}))
	require.NoError(t, mem.PutRule(ctx, engine.LateDeductionRule{
		ID: "rule-20", TierID: "tier-b1", MinMinutes: 20, MaxMinutes: &min59,
		DeductionValue: decimal.RequireFromString("0.10"),
	}))
	require.NoError(t, mem.PutRule(ctx, engine.LateDeductionRule{
		ID: "rule-60", TierID: "tier-b1", MinMinutes: 60,
		DeductionValue: decimal.RequireFromString("0.25"),
	}))
	require.NoError(t, mem.PutRule(ctx, engine.LateDeductionRule{
		ID: "rule-pm-10", TierID: "tier-b2", MinMinutes: 10,
		DeductionValue: decimal.RequireFromString("0.05"),
	}))

	eng := &engine.AttendanceEngine{Schedules: mem, Breaks: mem, Deductions: mem}
	return eng, mem
}

func punches(inAM, outAM, inPM, outPM string) engine.PunchCard {
	return engine.PunchCard{
		TimeInMorning:    engine.MustClock(inAM),
		TimeOutMorning:   engine.MustClock(outAM),
		TimeInAfternoon:  engine.MustClock(inPM),
		TimeOutAfternoon: engine.MustClock(outPM),
	}
}

// =============================================================================
// FULL PIPELINE TESTS
// =============================================================================

func TestCompute_OnTimeFullDay(t *testing.T) {
	// GIVEN: On-time punches covering both blocks exactly
	// WHEN: Computing
	// THEN: Full credit 1.00, no deductions, no early out

	eng, _ := newComputeFixture(t)

	result, err := eng.Compute(context.Background(), engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
		Punches:    punches("09:00:00", "12:00:00", "13:00:00", "18:00:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 60, result.AppliedBreakMinutes)
	assert.Equal(t, 480, result.NetWorkMinutes)
	assert.Equal(t, 480, result.ActualRenderedMinutes)
	assert.Equal(t, "1.00", result.DaysCredited.StringFixed(2))
	assert.True(t, result.DeductedDays.IsZero())
	assert.False(t, result.EarlyOut)
	assert.Empty(t, result.Diagnostics.AppliedRules)
}

func TestCompute_LateArrival_ForgivenOnCreditDeductedSeparately(t *testing.T) {
	// GIVEN: Punch-in 09:30, 25 minutes past the 09:05 valid-in boundary
	// WHEN: Computing
	// THEN: The 30-minute lead time is forgiven on the credit side (still
	//       1.00 credited before deduction) while the 20-59 rule deducts
	//       0.10 exactly once; final credit 0.90

	eng, _ := newComputeFixture(t)

	result, err := eng.Compute(context.Background(), engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
		Punches:    punches("09:30:00", "12:00:00", "13:00:00", "18:00:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 450, result.ActualRenderedMinutes)
	assert.Equal(t, int64(1800), result.Diagnostics.IgnoredLateInSeconds)
	assert.Equal(t, "0.90", result.DaysCredited.StringFixed(2))
	assert.Equal(t, "0.10", result.DeductedDays.StringFixed(2))
	assert.Equal(t, engine.RuleID("rule-20"), result.LateDeductionID)

	require.Len(t, result.Diagnostics.AppliedRules, 1)
	applied := result.Diagnostics.AppliedRules[0]
	assert.Equal(t, 1, applied.BlockIndex)
	assert.Equal(t, 25, applied.LateMinutes)
}

func TestCompute_PartialDay_TruncatesNeverRoundsUp(t *testing.T) {
	// GIVEN: 379 rendered minutes against a 480-minute basis (0.78958...)
	// WHEN: Computing
	// THEN: 0.78 credited, never 0.79

	eng, _ := newComputeFixture(t)

	result, err := eng.Compute(context.Background(), engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
		Punches:    punches("09:00:00", "12:00:00", "13:00:00", "16:19:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 379, result.ActualRenderedMinutes)
	assert.Equal(t, "0.78", result.DaysCredited.StringFixed(2))
	assert.True(t, result.EarlyOut)
}

func TestCompute_SecondBlockLate_UsesBreakValidInBaseline(t *testing.T) {
	// GIVEN: On-time morning, afternoon punch-in 13:20 against the lunch
	//        break's 13:10 valid-break-in boundary
	// WHEN: Computing
	// THEN: Block 2 is 10 minutes late on its own tier

	eng, _ := newComputeFixture(t)

	result, err := eng.Compute(context.Background(), engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
		Punches:    punches("09:00:00", "12:00:00", "13:20:00", "18:00:00"),
	})
	require.NoError(t, err)

	require.Len(t, result.Diagnostics.AppliedRules, 1)
	applied := result.Diagnostics.AppliedRules[0]
	assert.Equal(t, 2, applied.BlockIndex)
	assert.Equal(t, engine.TierID("tier-b2"), applied.TierID)
	assert.Equal(t, 10, applied.LateMinutes)
	assert.Equal(t, "0.05", result.DeductedDays.StringFixed(2))
}

func TestCompute_EarlyPunchIn_NotLate(t *testing.T) {
	// GIVEN: Punch-in 08:40, twenty minutes before the shift
	// WHEN: Computing
	// THEN: No lateness; credit counts only from 09:00

	eng, _ := newComputeFixture(t)

	result, err := eng.Compute(context.Background(), engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
		Punches:    punches("08:40:00", "12:00:00", "13:00:00", "18:00:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 480, result.ActualRenderedMinutes)
	assert.Equal(t, "1.00", result.DaysCredited.StringFixed(2))
	assert.Empty(t, result.Diagnostics.AppliedRules)
	assert.Zero(t, result.Diagnostics.IgnoredLateInSeconds)
}

func TestCompute_AbsentBlock_NoDeduction(t *testing.T) {
	// GIVEN: Morning worked, afternoon never punched
	// WHEN: Computing
	// THEN: Absence is not lateness; partial credit, zero deduction

	eng, _ := newComputeFixture(t)

	result, err := eng.Compute(context.Background(), engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
		Punches: engine.PunchCard{
			TimeInMorning:  engine.MustClock("09:00:00"),
			TimeOutMorning: engine.MustClock("12:00:00"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 180, result.ActualRenderedMinutes)
	assert.Equal(t, "0.37", result.DaysCredited.StringFixed(2)) // 180/480 = 0.375
	assert.True(t, result.DeductedDays.IsZero())
}

func TestCompute_EmptyPunchCard_ZeroCredit(t *testing.T) {
	eng, _ := newComputeFixture(t)

	result, err := eng.Compute(context.Background(), engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
	})
	require.NoError(t, err)

	assert.Zero(t, result.ActualRenderedMinutes)
	assert.True(t, result.DaysCredited.IsZero())
	assert.True(t, result.DeductedDays.IsZero())
}

func TestCompute_DeductionsCapAtOneDay(t *testing.T) {
	// GIVEN: Heavy 0.60 rules on both blocks and both blocks late
	// WHEN: Computing
	// THEN: The accumulated deduction is capped at 1.00

	eng, mem := newComputeFixture(t)
	ctx := context.Background()
	require.NoError(t, mem.PutRule(ctx, engine.LateDeductionRule{
		ID: "rule-heavy-1", TierID: "tier-b1", MinMinutes: 90,
		DeductionValue: decimal.RequireFromString("0.60"),
	}))
	require.NoError(t, mem.PutRule(ctx, engine.LateDeductionRule{
		ID: "rule-heavy-2", TierID: "tier-b2", MinMinutes: 90,
		DeductionValue: decimal.RequireFromString("0.60"),
	}))

	result, err := eng.Compute(ctx, engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
		Punches:    punches("10:40:00", "12:00:00", "14:45:00", "18:00:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "1.00", result.DeductedDays.StringFixed(2))
	assert.True(t, result.DaysCredited.IsZero())
	assert.Len(t, result.Diagnostics.AppliedRules, 2)
}

func TestCompute_NoTierMapped_DegradesWithNote(t *testing.T) {
	// GIVEN: A work time with no deduction tiers at all
	// WHEN: Computing a late row
	// THEN: The row computes with zero deduction and a diagnostic note

	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.PutWorkTime(ctx, engine.WorkTime{
		ID:        "wt-bare",
		Name:      "Bare",
		StartTime: engine.MustClock("09:00:00"),
		EndTime:   engine.MustClock("18:00:00"),
		IsDefault: true,
	}))
	eng := &engine.AttendanceEngine{Schedules: mem, Breaks: mem, Deductions: mem}

	result, err := eng.Compute(ctx, engine.ComputeInput{
		EmployeeID: "emp-x",
		Date:       date(2024, time.March, 11),
		Punches:    punches("09:30:00", "12:00:00", "13:00:00", "18:00:00"),
	})
	require.NoError(t, err)

	assert.True(t, result.DeductedDays.IsZero())
	assert.NotEmpty(t, result.Diagnostics.Notes)
}

func TestCompute_InvalidShiftTimes_Fatal(t *testing.T) {
	// GIVEN: An employee whose resolved shift has a zero start clock
	// WHEN: Computing
	// THEN: A fatal InvalidShiftTimesError, no partial result

	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.PutWorkTime(ctx, engine.WorkTime{
		ID:        "wt-broken",
		Name:      "Broken",
		EndTime:   engine.MustClock("18:00:00"),
		IsDefault: true,
	}))
	eng := &engine.AttendanceEngine{Schedules: mem, Breaks: mem, Deductions: mem}

	_, err := eng.Compute(ctx, engine.ComputeInput{
		EmployeeID: "emp-x",
		Date:       date(2024, time.March, 11),
		Punches:    punches("09:00:00", "12:00:00", "13:00:00", "18:00:00"),
	})
	require.Error(t, err)

	var ist *engine.InvalidShiftTimesError
	require.True(t, errors.As(err, &ist))
	assert.Equal(t, engine.WorkTimeID("wt-broken"), ist.WorkTimeID)
	assert.True(t, engine.IsFatal(err))
}

func TestCompute_Idempotent(t *testing.T) {
	// Identical inputs and reference data must yield identical results.

	eng, _ := newComputeFixture(t)
	in := engine.ComputeInput{
		EmployeeID: "emp-1",
		Date:       date(2024, time.March, 11),
		Punches:    punches("09:30:00", "12:00:00", "13:20:00", "17:00:00"),
	}

	first, err := eng.Compute(context.Background(), in)
	require.NoError(t, err)
	second, err := eng.Compute(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, first.DaysCredited.Equal(second.DaysCredited))
	assert.True(t, first.DeductedDays.Equal(second.DeductedDays))
	assert.Equal(t, first.ActualRenderedMinutes, second.ActualRenderedMinutes)
	assert.Equal(t, first.EarlyOut, second.EarlyOut)
}

// =============================================================================
// OVERNIGHT SHIFT TESTS
// =============================================================================

func TestCompute_OvernightShift(t *testing.T) {
	// GIVEN: A 22:00-06:00 night shift with a 02:00-02:30 meal break
	// WHEN: Punching 22:00-02:00 and 02:30-06:00
	// THEN: Full credit; punches in the early-morning tail are anchored onto
	//       the next calendar day

	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.PutWorkTime(ctx, engine.WorkTime{
		ID:        "wt-night",
		Name:      "Night Shift",
		StartTime: engine.MustClock("22:00:00"),
		EndTime:   engine.MustClock("06:00:00"),
		IsDefault: true,
	}))
	require.NoError(t, mem.PutBreak(ctx, engine.BreakDefinition{
		ID:           "br-meal",
		Name:         "Night Meal",
		StartTime:    engine.MustClock("02:00:00"),
		EndTime:      engine.MustClock("02:30:00"),
		IsShiftSplit: true,
	}))
	require.NoError(t, mem.MapBreak(ctx, "wt-night", "br-meal"))
	eng := &engine.AttendanceEngine{Schedules: mem, Breaks: mem, Deductions: mem}

	result, err := eng.Compute(ctx, engine.ComputeInput{
		EmployeeID: "emp-n",
		Date:       date(2024, time.March, 11),
		Punches:    punches("22:00:00", "02:00:00", "02:30:00", "06:00:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 450, result.ActualRenderedMinutes) // 480 shift minutes - 30 break
	assert.Equal(t, "1.00", result.DaysCredited.StringFixed(2))
	assert.True(t, result.DeductedDays.IsZero())
}
