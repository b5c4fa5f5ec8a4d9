/*
Package factory provides JSON to Go attendance-configuration conversion.

PURPOSE:
  Converts JSON configuration documents (shifts, breaks, deduction tiers and
  rules, schedule assignments, punch rows) into engine types and loads them
  into a store. This enables configuration without code changes - HR can
  define shifts and rule books in JSON.

JSON SCHEMA:
  {
    "work_times": [
      {"id": "day", "name": "Day Shift", "start": "09:00:00", "end": "18:00:00",
       "is_default": true, "valid_in_end": "09:05:00"}
    ],
    "breaks": [
      {"id": "lunch", "name": "Lunch", "start": "12:00:00", "end": "13:00:00",
       "is_shift_split": false, "valid_break_in_end": "13:05:00"}
    ],
    "break_mappings": [{"work_time_id": "day", "break_id": "lunch"}],
    "tiers": [{"id": "day-t1", "work_time_id": "day", "block_index": 0, "name": "Default"}],
    "rules": [{"id": "r1", "tier_id": "day-t1", "min_minutes": 10,
               "max_minutes": 19, "deduction_value": "0.05"}],
    "schedules": [
      {"id": "s1", "employee_id": "emp-1", "work_time_id": "day",
       "effective_date": "2025-01-01", "recurrence": "weekly",
       "days_of_week": "Mon,Tue,Wed,Thu,Fri", "priority": 1, "is_active": true}
    ],
    "punches": [
      {"employee_id": "emp-1", "date": "2025-03-10",
       "in_am": "09:00:00", "out_am": "12:00:00",
       "in_pm": "13:00:00", "out_pm": "18:00:00"}
    ]
  }

USAGE:
  cfg, err := factory.LoadFile("seed.json")
  err = cfg.Apply(ctx, mem)   // any store implementing Sink

SEE ALSO:
  - engine/types.go:     the target types
  - engine/store:        the in-memory target
  - store/sqlite:        production target via the same Sink interface
*/
package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type ConfigJSON struct {
	WorkTimes     []WorkTimeJSON `json:"work_times"`
	Breaks        []BreakJSON    `json:"breaks"`
	BreakMappings []MappingJSON  `json:"break_mappings"`
	Tiers         []TierJSON     `json:"tiers"`
	Rules         []RuleJSON     `json:"rules"`
	Schedules     []ScheduleJSON `json:"schedules"`
	Punches       []PunchJSON    `json:"punches"`
}

type WorkTimeJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Start        string `json:"start"`
	End          string `json:"end"`
	TotalMinutes int    `json:"total_minutes,omitempty"`
	IsDefault    bool   `json:"is_default,omitempty"`
	ValidInStart string `json:"valid_in_start,omitempty"`
	ValidInEnd   string `json:"valid_in_end,omitempty"`
}

type BreakJSON struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Start             string `json:"start"`
	End               string `json:"end"`
	ValidBreakInStart string `json:"valid_break_in_start,omitempty"`
	ValidBreakInEnd   string `json:"valid_break_in_end,omitempty"`
	IsShiftSplit      bool   `json:"is_shift_split,omitempty"`
}

type MappingJSON struct {
	WorkTimeID string `json:"work_time_id"`
	BreakID    string `json:"break_id"`
}

type TierJSON struct {
	ID         string `json:"id"`
	WorkTimeID string `json:"work_time_id"`
	BlockIndex int    `json:"block_index"`
	Name       string `json:"name"`
}

type RuleJSON struct {
	ID             string `json:"id"`
	TierID         string `json:"tier_id"`
	MinMinutes     int    `json:"min_minutes"`
	MaxMinutes     *int   `json:"max_minutes"`
	DeductionValue string `json:"deduction_value"`
}

type ScheduleJSON struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	WorkTimeID      string `json:"work_time_id"`
	EffectiveDate   string `json:"effective_date"`
	EndDate         string `json:"end_date,omitempty"`
	Recurrence      string `json:"recurrence,omitempty"`
	Interval        int    `json:"interval,omitempty"`
	DaysOfWeek      string `json:"days_of_week,omitempty"` // "Mon,Wed,Fri"
	OccurrenceLimit int    `json:"occurrence_limit,omitempty"`
	Priority        int    `json:"priority,omitempty"`
	IsActive        *bool  `json:"is_active,omitempty"` // default true
}

type PunchJSON struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	InAM       string `json:"in_am,omitempty"`
	OutAM      string `json:"out_am,omitempty"`
	InPM       string `json:"in_pm,omitempty"`
	OutPM      string `json:"out_pm,omitempty"`
	IsHoliday  bool   `json:"is_holiday,omitempty"`
}

// =============================================================================
// SINK - Anything that can receive the parsed configuration
// =============================================================================

// Sink is implemented by engine/store.Memory and store/sqlite.Store.
type Sink interface {
	PutWorkTime(context.Context, engine.WorkTime) error
	PutBreak(context.Context, engine.BreakDefinition) error
	MapBreak(context.Context, engine.WorkTimeID, engine.BreakID) error
	PutTier(context.Context, engine.LateDeductionTier) error
	PutRule(context.Context, engine.LateDeductionRule) error
	PutSchedule(context.Context, engine.ShiftSchedule) error
	PutPunch(context.Context, engine.PunchRow) error
}

// =============================================================================
// PARSING AND LOADING
// =============================================================================

// Parse decodes a configuration document.
func Parse(data []byte) (*ConfigJSON, error) {
	var cfg ConfigJSON
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads and decodes a configuration file.
func LoadFile(path string) (*ConfigJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Apply converts and loads every section into the sink. Conversion errors
// name the offending record.
func (cfg *ConfigJSON) Apply(ctx context.Context, sink Sink) error {
	for _, w := range cfg.WorkTimes {
		wt, err := w.toWorkTime()
		if err != nil {
			return fmt.Errorf("work_time %s: %w", w.ID, err)
		}
		if err := sink.PutWorkTime(ctx, wt); err != nil {
			return fmt.Errorf("work_time %s: %w", w.ID, err)
		}
	}
	for _, b := range cfg.Breaks {
		def, err := b.toBreak()
		if err != nil {
			return fmt.Errorf("break %s: %w", b.ID, err)
		}
		if err := sink.PutBreak(ctx, def); err != nil {
			return fmt.Errorf("break %s: %w", b.ID, err)
		}
	}
	for _, m := range cfg.BreakMappings {
		if err := sink.MapBreak(ctx, engine.WorkTimeID(m.WorkTimeID), engine.BreakID(m.BreakID)); err != nil {
			return fmt.Errorf("break_mapping %s/%s: %w", m.WorkTimeID, m.BreakID, err)
		}
	}
	for _, t := range cfg.Tiers {
		tier := engine.LateDeductionTier{
			ID:         engine.TierID(t.ID),
			WorkTimeID: engine.WorkTimeID(t.WorkTimeID),
			BlockIndex: t.BlockIndex,
			Name:       t.Name,
		}
		if err := sink.PutTier(ctx, tier); err != nil {
			return fmt.Errorf("tier %s: %w", t.ID, err)
		}
	}
	for _, r := range cfg.Rules {
		rule, err := r.toRule()
		if err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
		if err := sink.PutRule(ctx, rule); err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
	}
	for _, s := range cfg.Schedules {
		sched, err := s.toSchedule()
		if err != nil {
			return fmt.Errorf("schedule %s: %w", s.ID, err)
		}
		if err := sink.PutSchedule(ctx, sched); err != nil {
			return fmt.Errorf("schedule %s: %w", s.ID, err)
		}
	}
	for _, p := range cfg.Punches {
		row, err := p.toPunchRow()
		if err != nil {
			return fmt.Errorf("punch %s/%s: %w", p.EmployeeID, p.Date, err)
		}
		if err := sink.PutPunch(ctx, row); err != nil {
			return fmt.Errorf("punch %s/%s: %w", p.EmployeeID, p.Date, err)
		}
	}
	return nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func (w WorkTimeJSON) toWorkTime() (engine.WorkTime, error) {
	start, err := engine.ParseClock(w.Start)
	if err != nil {
		return engine.WorkTime{}, err
	}
	end, err := engine.ParseClock(w.End)
	if err != nil {
		return engine.WorkTime{}, err
	}
	validStart, err := engine.ParseClock(w.ValidInStart)
	if err != nil {
		return engine.WorkTime{}, err
	}
	validEnd, err := engine.ParseClock(w.ValidInEnd)
	if err != nil {
		return engine.WorkTime{}, err
	}
	total := w.TotalMinutes
	if total == 0 {
		// Derive from the clock pair, overnight-aware.
		span := int(end) - int(start)
		if span <= 0 {
			span += engine.SecondsPerDay
		}
		total = span / 60
	}
	return engine.WorkTime{
		ID:           engine.WorkTimeID(w.ID),
		Name:         w.Name,
		StartTime:    start,
		EndTime:      end,
		TotalMinutes: total,
		IsDefault:    w.IsDefault,
		ValidInStart: validStart,
		ValidInEnd:   validEnd,
	}, nil
}

func (b BreakJSON) toBreak() (engine.BreakDefinition, error) {
	start, err := engine.ParseClock(b.Start)
	if err != nil {
		return engine.BreakDefinition{}, err
	}
	end, err := engine.ParseClock(b.End)
	if err != nil {
		return engine.BreakDefinition{}, err
	}
	validStart, err := engine.ParseClock(b.ValidBreakInStart)
	if err != nil {
		return engine.BreakDefinition{}, err
	}
	validEnd, err := engine.ParseClock(b.ValidBreakInEnd)
	if err != nil {
		return engine.BreakDefinition{}, err
	}
	return engine.BreakDefinition{
		ID:                engine.BreakID(b.ID),
		Name:              b.Name,
		StartTime:         start,
		EndTime:           end,
		ValidBreakInStart: validStart,
		ValidBreakInEnd:   validEnd,
		IsShiftSplit:      b.IsShiftSplit,
	}, nil
}

func (r RuleJSON) toRule() (engine.LateDeductionRule, error) {
	value, err := decimal.NewFromString(r.DeductionValue)
	if err != nil {
		return engine.LateDeductionRule{}, fmt.Errorf("deduction_value: %w", err)
	}
	return engine.LateDeductionRule{
		ID:             engine.RuleID(r.ID),
		TierID:         engine.TierID(r.TierID),
		MinMinutes:     r.MinMinutes,
		MaxMinutes:     r.MaxMinutes,
		DeductionValue: value,
	}, nil
}

func (s ScheduleJSON) toSchedule() (engine.ShiftSchedule, error) {
	effective, err := engine.ParseDate(s.EffectiveDate)
	if err != nil {
		return engine.ShiftSchedule{}, fmt.Errorf("effective_date: %w", err)
	}
	var endDate *engine.Date
	if s.EndDate != "" {
		d, err := engine.ParseDate(s.EndDate)
		if err != nil {
			return engine.ShiftSchedule{}, fmt.Errorf("end_date: %w", err)
		}
		endDate = &d
	}
	days, err := ParseWeekdays(s.DaysOfWeek)
	if err != nil {
		return engine.ShiftSchedule{}, err
	}
	active := true
	if s.IsActive != nil {
		active = *s.IsActive
	}
	return engine.ShiftSchedule{
		ID:              engine.ScheduleID(s.ID),
		EmployeeID:      engine.EmployeeID(s.EmployeeID),
		WorkTimeID:      engine.WorkTimeID(s.WorkTimeID),
		EffectiveDate:   effective,
		EndDate:         endDate,
		Recurrence:      engine.RecurrenceType(strings.ToLower(strings.TrimSpace(s.Recurrence))),
		Interval:        s.Interval,
		DaysOfWeek:      days,
		OccurrenceLimit: s.OccurrenceLimit,
		Priority:        s.Priority,
		IsActive:        active,
	}, nil
}

func (p PunchJSON) toPunchRow() (engine.PunchRow, error) {
	date, err := engine.ParseDate(p.Date)
	if err != nil {
		return engine.PunchRow{}, err
	}
	card := engine.PunchCard{}
	for _, f := range []struct {
		raw string
		dst *engine.Clock
	}{
		{p.InAM, &card.TimeInMorning},
		{p.OutAM, &card.TimeOutMorning},
		{p.InPM, &card.TimeInAfternoon},
		{p.OutPM, &card.TimeOutAfternoon},
	} {
		c, err := engine.ParseClock(f.raw)
		if err != nil {
			return engine.PunchRow{}, err
		}
		*f.dst = c
	}
	return engine.PunchRow{
		EmployeeID: engine.EmployeeID(p.EmployeeID),
		Date:       date,
		Punches:    card,
		IsHoliday:  p.IsHoliday,
	}, nil
}

// ParseWeekdays parses "Mon,Wed,Fri" (full names accepted too).
func ParseWeekdays(s string) ([]time.Weekday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	names := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
		"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
		"sat": time.Saturday,
	}
	var out []time.Weekday
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if len(tok) > 3 {
			tok = tok[:3]
		}
		wd, ok := names[tok]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", tok)
		}
		out = append(out, wd)
	}
	return out, nil
}
