/*
Package engine computes payroll-accurate day credits and late deductions
from attendance punches.

PURPOSE:
  Given an employee, a date, and up to two in/out punch pairs, the engine
  resolves the effective work shift, carves the shift into working blocks
  around breaks, credits rendered time against those blocks, and applies
  tiered late-arrival deductions. Results feed payroll, so every step is
  deterministic, truncating (never rounding up), and auditable.

KEY CONCEPTS IN THIS FILE (types.go):
  - Clock: a time-of-day in seconds since midnight ("00:00:00" = unpunched)
  - Date:  a calendar day, the engine's resolution unit
  - WorkTime / ShiftSchedule / BreakDefinition: read-only reference data
  - LateDeductionTier / LateDeductionRule: the deduction rule book
  - AttendanceResult: the computed, idempotent output row

DESIGN PRINCIPLES:
  1. Purity: the engine mutates nothing; it reads reference data and
     returns a result value. Persistence is the caller's job.
  2. Precision: payroll fractions use decimal.Decimal, truncated to two
     decimals, never rounded up.
  3. Reproducibility: identical inputs and reference data always produce
     identical outputs. No caching, no clocks, no randomness.

SEE ALSO:
  - interval.go:   half-open interval algebra
  - resolver.go:   shift schedule resolution
  - compute.go:    the AttendanceEngine pipeline
*/
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type WorkTimeID string
type ScheduleID string
type BreakID string
type TierID string
type RuleID string

// =============================================================================
// CLOCK - Time of day, seconds since midnight
// =============================================================================

// Clock is a time-of-day in seconds since midnight. The zero value is the
// unpunched sentinel ("00:00:00"): attendance hardware writes it for missing
// punches, so midnight itself is not a representable punch time.
type Clock int

const SecondsPerDay = 24 * 60 * 60

// ParseClock parses "HH:MM:SS" (or "HH:MM") into a Clock.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.Count(s, ":") == 1 {
		s += ":00"
	}
	var h, m, sec int
	if n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil || n != 3 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("clock out of range %q", s)
	}
	return Clock(h*3600 + m*60 + sec), nil
}

// MustClock is a test/seed helper; panics on malformed input.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero reports whether the clock is the unpunched/null sentinel.
func (c Clock) IsZero() bool { return c == 0 }

// On anchors the clock onto a calendar date (UTC).
func (c Clock) On(d Date) time.Time {
	return d.Time().Add(time.Duration(c) * time.Second)
}

func (c Clock) String() string {
	s := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

// =============================================================================
// DATE - Calendar day (UTC)
// =============================================================================

type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

func (d Date) Time() time.Time           { return d.t }
func (d Date) Year() int                 { return d.t.Year() }
func (d Date) Month() time.Month         { return d.t.Month() }
func (d Date) Day() int                  { return d.t.Day() }
func (d Date) Weekday() time.Weekday     { return d.t.Weekday() }
func (d Date) AddDays(n int) Date        { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }
func (d Date) IsZero() bool              { return d.t.IsZero() }
func (d Date) String() string            { return d.t.Format("2006-01-02") }

// DaysSince returns the whole days elapsed from o to d (negative if d < o).
func (d Date) DaysSince(o Date) int {
	return int(d.t.Sub(o.t).Hours() / 24)
}

// MonthsSince returns whole calendar months elapsed from o to d.
func (d Date) MonthsSince(o Date) int {
	return (d.Year()-o.Year())*12 + int(d.Month()) - int(o.Month())
}

// =============================================================================
// REFERENCE DATA - Shifts, schedules, breaks (read-only to the engine)
// =============================================================================

// WorkTime is an immutable shift definition.
type WorkTime struct {
	ID           WorkTimeID
	Name         string
	StartTime    Clock
	EndTime      Clock
	TotalMinutes int
	IsDefault    bool

	// Grace window for the first working block. ValidInEnd, when set, is the
	// latest on-time punch-in; zero means the 5-minute default grace applies.
	ValidInStart Clock
	ValidInEnd   Clock
}

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// ShiftSchedule assigns a WorkTime to an employee on a recurring basis.
// Many may exist per employee; exactly one wins per date (see resolver.go).
type ShiftSchedule struct {
	ID            ScheduleID
	EmployeeID    EmployeeID
	WorkTimeID    WorkTimeID
	EffectiveDate Date
	EndDate       *Date // nil = open-ended
	Recurrence    RecurrenceType

	// Every Nth day/week/month. Values below 1 are treated as 1.
	Interval int

	// Explicit weekday list. When non-empty it overrides Recurrence: stored
	// rows in the wild carry day lists under mismatched recurrence types.
	DaysOfWeek []time.Weekday

	// OccurrenceLimit stops the rule after exactly N occurrences; 0 = unlimited.
	OccurrenceLimit int

	Priority int
	IsActive bool
}

// BreakDefinition is a break window attachable to a WorkTime.
type BreakDefinition struct {
	ID        BreakID
	Name      string
	StartTime Clock
	EndTime   Clock

	// Valid punch-in window after the break. ValidBreakInEnd is the on-time
	// baseline for the block that follows a splitting break.
	ValidBreakInStart Clock
	ValidBreakInEnd   Clock

	// IsShiftSplit marks breaks that divide the shift into independently
	// evaluated working blocks.
	IsShiftSplit bool
}

// =============================================================================
// PUNCHES
// =============================================================================

// PunchCard holds one day's normalized punches. Zero clocks mean unpunched;
// only complete in/out pairs contribute worked time.
type PunchCard struct {
	TimeInMorning    Clock
	TimeOutMorning   Clock
	TimeInAfternoon  Clock
	TimeOutAfternoon Clock
}

func (p PunchCard) IsEmpty() bool {
	return p.TimeInMorning.IsZero() && p.TimeOutMorning.IsZero() &&
		p.TimeInAfternoon.IsZero() && p.TimeOutAfternoon.IsZero()
}

// PunchRow is a stored punch record, the unit of batch recalculation.
type PunchRow struct {
	EmployeeID EmployeeID
	Date       Date
	Punches    PunchCard
	IsHoliday  bool
}

// =============================================================================
// LATE DEDUCTION RULE BOOK
// =============================================================================

// LateDeductionTier groups rules for one (work time, block) pair.
// BlockIndex 0 is the wildcard tier matching any block.
type LateDeductionTier struct {
	ID         TierID
	WorkTimeID WorkTimeID
	BlockIndex int
	Name       string
}

// LateDeductionRule maps a late-minute range onto a day-fraction deduction.
// MaxMinutes nil means unbounded above.
type LateDeductionRule struct {
	ID             RuleID
	TierID         TierID
	MinMinutes     int
	MaxMinutes     *int
	DeductionValue decimal.Decimal // fraction of a day, 0..1
}

// Covers reports whether lateMinutes falls in [MinMinutes, MaxMinutes].
func (r LateDeductionRule) Covers(lateMinutes int) bool {
	if lateMinutes < r.MinMinutes {
		return false
	}
	return r.MaxMinutes == nil || lateMinutes <= *r.MaxMinutes
}

// =============================================================================
// RESULT
// =============================================================================

// AttendanceResult is the engine's output for one employee/date. Idempotent:
// recomputing with identical inputs and reference data yields the same row.
type AttendanceResult struct {
	EmployeeID EmployeeID
	Date       Date

	AppliedBreakMinutes   int
	NetWorkMinutes        int // credit basis: scheduled non-break minutes
	ActualRenderedMinutes int

	DaysCredited decimal.Decimal // 0..1, two-decimal truncated
	EarlyOut     bool

	// IsHolidayAttendance is an input fact passed through for the surrounding
	// system; the engine never applies holiday multipliers.
	IsHolidayAttendance bool

	LateDeductionID    RuleID // last rule touched, informational
	LateDeductionValue decimal.Decimal
	DeductedDays       decimal.Decimal

	Diagnostics Diagnostics
}

// Diagnostics carries the audit trail of a computation. Everything here is
// informational; payroll consumes only the numeric fields above.
type Diagnostics struct {
	Blocks               []WorkingBlock
	AppliedRules         []AppliedRule
	IgnoredLateInSeconds int64
	Candidates           []ShiftSchedule
	Notes                []string
}

// AppliedRule records one block's deduction evaluation.
type AppliedRule struct {
	BlockIndex  int
	TierID      TierID
	RuleID      RuleID
	LateMinutes int
	Value       decimal.Decimal
}

// =============================================================================
// FRACTION HELPERS - All payroll fractions truncate, never round up
// =============================================================================

// TruncFrac2 floors a fraction to two decimals (0.789 -> 0.78).
func TruncFrac2(d decimal.Decimal) decimal.Decimal {
	return d.RoundFloor(2)
}

// Clamp01 clamps a fraction into [0, 1].
func Clamp01(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return d
}
