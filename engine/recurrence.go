/*
recurrence.go - Schedule recurrence matching

PURPOSE:
  A ShiftSchedule row describes a recurring assignment: none, daily, weekly,
  or monthly, with an every-Nth interval and an optional occurrence limit.
  Each recurrence kind is a tagged variant with two operations:
  - Matches(effective, date):        does the rule fire on this date?
  - OccurrenceIndex(effective, date): 1-based ordinal of this firing

  An explicit weekday list overrides the stated recurrence type entirely;
  production rows carry day lists under mismatched type tags and the list is
  the stronger signal.

OCCURRENCE LIMITS:
  A limit of N means the rule fires for exactly its first N occurrences and
  never again. Weekly-with-days ordinals have no closed form once multiple
  weekday tokens are allowed, so they are counted by a bounded day walk.
*/
package engine

import "time"

// weeklyWalkCap bounds the day-by-day occurrence count for weekly rules with
// explicit weekday lists (~27 years). Beyond it the rule is treated as
// exhausted.
const weeklyWalkCap = 10000

// RecurrenceRule is one schedule row's matching behavior.
type RecurrenceRule interface {
	// Matches reports whether the rule fires on date, occurrence limit
	// included. Dates before effective never match.
	Matches(effective, date Date) bool

	// OccurrenceIndex returns the 1-based ordinal of date among the rule's
	// firings, or 0 when date is not a firing.
	OccurrenceIndex(effective, date Date) int
}

// RuleFor builds the rule variant for a schedule row.
func RuleFor(s ShiftSchedule) RecurrenceRule {
	interval := s.Interval
	if interval < 1 {
		interval = 1
	}
	if len(s.DaysOfWeek) > 0 {
		return weekdayListRule{days: s.DaysOfWeek, limit: s.OccurrenceLimit}
	}
	switch s.Recurrence {
	case RecurrenceDaily:
		return dailyRule{interval: interval, limit: s.OccurrenceLimit}
	case RecurrenceWeekly:
		return weeklyRule{interval: interval, limit: s.OccurrenceLimit}
	case RecurrenceMonthly:
		return monthlyRule{interval: interval, limit: s.OccurrenceLimit}
	default:
		return noneRule{}
	}
}

// =============================================================================
// NONE - One-shot assignment on the effective date
// =============================================================================

type noneRule struct{}

func (noneRule) Matches(effective, date Date) bool {
	return effective.Equal(date)
}

func (noneRule) OccurrenceIndex(effective, date Date) int {
	if effective.Equal(date) {
		return 1
	}
	return 0
}

// =============================================================================
// DAILY - Every Nth day from the effective date
// =============================================================================

type dailyRule struct {
	interval int
	limit    int
}

func (r dailyRule) OccurrenceIndex(effective, date Date) int {
	days := date.DaysSince(effective)
	if days < 0 || days%r.interval != 0 {
		return 0
	}
	return days/r.interval + 1
}

func (r dailyRule) Matches(effective, date Date) bool {
	return withinLimit(r.OccurrenceIndex(effective, date), r.limit)
}

// =============================================================================
// WEEKLY - Same weekday as the effective date, every Nth week
// =============================================================================

type weeklyRule struct {
	interval int
	limit    int
}

func (r weeklyRule) OccurrenceIndex(effective, date Date) int {
	days := date.DaysSince(effective)
	step := 7 * r.interval
	if days < 0 || days%step != 0 {
		return 0
	}
	return days/step + 1
}

func (r weeklyRule) Matches(effective, date Date) bool {
	return withinLimit(r.OccurrenceIndex(effective, date), r.limit)
}

// =============================================================================
// WEEKDAY LIST - Explicit days, counted by bounded day walk
// =============================================================================

type weekdayListRule struct {
	days  []time.Weekday
	limit int
}

func (r weekdayListRule) hasDay(wd time.Weekday) bool {
	for _, d := range r.days {
		if d == wd {
			return true
		}
	}
	return false
}

func (r weekdayListRule) OccurrenceIndex(effective, date Date) int {
	if date.Before(effective) || !r.hasDay(date.Weekday()) {
		return 0
	}
	span := date.DaysSince(effective)
	if span > weeklyWalkCap {
		return 0
	}
	index := 0
	for cur := effective; cur.BeforeOrEqual(date); cur = cur.AddDays(1) {
		if r.hasDay(cur.Weekday()) {
			index++
		}
	}
	return index
}

func (r weekdayListRule) Matches(effective, date Date) bool {
	return withinLimit(r.OccurrenceIndex(effective, date), r.limit)
}

// =============================================================================
// MONTHLY - Same day of month, clamped to month length, every Nth month
// =============================================================================

type monthlyRule struct {
	interval int
	limit    int
}

func (r monthlyRule) OccurrenceIndex(effective, date Date) int {
	months := date.MonthsSince(effective)
	if months < 0 || months%r.interval != 0 {
		return 0
	}
	// Jan 31 recurs on Feb 28/29, Apr 30, and so on.
	want := effective.Day()
	if last := daysInMonth(date.Year(), date.Month()); want > last {
		want = last
	}
	if date.Day() != want {
		return 0
	}
	return months/r.interval + 1
}

func (r monthlyRule) Matches(effective, date Date) bool {
	return withinLimit(r.OccurrenceIndex(effective, date), r.limit)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func withinLimit(index, limit int) bool {
	if index == 0 {
		return false
	}
	return limit <= 0 || index <= limit
}
