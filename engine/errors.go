/*
errors.go - Error taxonomy for attendance computation

PURPOSE:
  Two failure classes exist:
  1. Fatal    - the single row cannot be computed (no shift, bad shift times).
                Callers must surface these per-row and produce no numbers.
  2. Degraded - deduction lookups missed (no tier, no rule). The computation
                continues with zero deduction and a diagnostic note.

USAGE:
  result, err := eng.Compute(ctx, input)
  if err != nil {
      // errors.Is(err, engine.ErrNoShiftFound) etc.
  }
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
	// ErrNoShiftFound: no schedule assignment matched the date and no default
	// WorkTime is configured. Fatal to the single computation.
	ErrNoShiftFound = errors.New("no shift found")

	// ErrInvalidShiftTimes: the resolved shift's start/end times fail to
	// normalize into an interval. Fatal.
	ErrInvalidShiftTimes = errors.New("invalid shift times")

	// ErrNoTierMapped: no deduction tier for (work time, block). Non-fatal;
	// the block contributes zero deduction.
	ErrNoTierMapped = errors.New("no deduction tier mapped")

	// ErrNoRuleMatch: a tier exists but no rule covers the late minutes.
	// Non-fatal.
	ErrNoRuleMatch = errors.New("no deduction rule matched")

	// ErrNoInterval: a clock pair cannot form an interval (zero sentinel).
	ErrNoInterval = errors.New("no interval")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// NoShiftFoundError carries the resolution context of a fatal miss.
type NoShiftFoundError struct {
	EmployeeID EmployeeID
	Date       Date
	Candidates int // assignments examined before falling through
}

func (e *NoShiftFoundError) Error() string {
	return fmt.Sprintf("no shift found for employee %s on %s (%d candidates examined)",
		e.EmployeeID, e.Date, e.Candidates)
}

func (e *NoShiftFoundError) Unwrap() error { return ErrNoShiftFound }

// InvalidShiftTimesError identifies the unparseable shift.
type InvalidShiftTimesError struct {
	WorkTimeID WorkTimeID
	Start, End Clock
}

func (e *InvalidShiftTimesError) Error() string {
	return fmt.Sprintf("work time %s has invalid times %s-%s", e.WorkTimeID, e.Start, e.End)
}

func (e *InvalidShiftTimesError) Unwrap() error { return ErrInvalidShiftTimes }

// =============================================================================
// HELPERS
// =============================================================================

// IsFatal reports whether the error aborts a single row's computation.
// Batch callers report fatal rows individually and keep going.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoShiftFound) || errors.Is(err, ErrInvalidShiftTimes)
}
