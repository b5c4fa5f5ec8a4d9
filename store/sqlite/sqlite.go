/*
Package sqlite provides the SQLite-backed implementation of the engine's
storage interfaces.

PURPOSE:
  Implements every persistence interface (ScheduleStore, BreakStore,
  DeductionStore, PunchStore, ResultStore, AuditLog) plus the factory.Sink
  configuration writers. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  work_times:            Shift definitions (immutable reference data)
  break_definitions:     Break windows
  work_time_breaks:      Shift-to-break mapping
  shift_schedules:       Recurring schedule assignments
  late_deduction_tiers:  (shift, block) tier keys
  late_deduction_rules:  Ranged deduction rules per tier
  attendance_punches:    Raw punch rows (batch input)
  attendance_results:    Computed results, upserted per (employee, date)
  audit_log:             Human-readable computation trail

UPSERT UNIT:
  UpsertResult is a single INSERT .. ON CONFLICT DO UPDATE statement: the
  per-row transaction unit of bulk recalculation. A failed row leaves every
  other row untouched. The unique (employee_id, date) key also serializes
  concurrent recalculations of the same row at the database.

ENCODING:
  Clocks as "HH:MM:SS" text, dates as "2006-01-02" text, payroll fractions
  as decimal text (never floats), weekday lists as comma-joined ints.

WAL MODE:
  Opened with WAL and foreign keys on, matching SQLite production practice:
  readers don't block, one writer at a time.

USAGE:
  st, err := sqlite.New("./data/attendance.db")
  defer st.Close()
  eng := &engine.AttendanceEngine{Schedules: st, Breaks: st, Deductions: st}
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/engine"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS work_times (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		total_minutes INTEGER NOT NULL,
		is_default INTEGER NOT NULL DEFAULT 0,
		valid_in_start TEXT NOT NULL DEFAULT '00:00:00',
		valid_in_end TEXT NOT NULL DEFAULT '00:00:00'
	);

	CREATE TABLE IF NOT EXISTS break_definitions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		valid_break_in_start TEXT NOT NULL DEFAULT '00:00:00',
		valid_break_in_end TEXT NOT NULL DEFAULT '00:00:00',
		is_shift_split INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS work_time_breaks (
		work_time_id TEXT NOT NULL REFERENCES work_times(id),
		break_id TEXT NOT NULL REFERENCES break_definitions(id),
		PRIMARY KEY (work_time_id, break_id)
	);

	CREATE TABLE IF NOT EXISTS shift_schedules (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_time_id TEXT NOT NULL REFERENCES work_times(id),
		effective_date TEXT NOT NULL,
		end_date TEXT,
		recurrence TEXT NOT NULL DEFAULT 'none',
		recurrence_interval INTEGER NOT NULL DEFAULT 1,
		days_of_week TEXT NOT NULL DEFAULT '',
		occurrence_limit INTEGER NOT NULL DEFAULT 0,
		priority INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	-- Hot path: window-covering assignments per employee/date
	CREATE INDEX IF NOT EXISTS idx_schedules_employee_window
		ON shift_schedules(employee_id, effective_date, end_date);

	CREATE TABLE IF NOT EXISTS late_deduction_tiers (
		id TEXT PRIMARY KEY,
		work_time_id TEXT NOT NULL REFERENCES work_times(id),
		block_index INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tiers_work_time_block
		ON late_deduction_tiers(work_time_id, block_index);

	CREATE TABLE IF NOT EXISTS late_deduction_rules (
		id TEXT PRIMARY KEY,
		tier_id TEXT NOT NULL REFERENCES late_deduction_tiers(id),
		min_minutes INTEGER NOT NULL,
		max_minutes INTEGER,
		deduction_value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rules_tier
		ON late_deduction_rules(tier_id, min_minutes);

	CREATE TABLE IF NOT EXISTS attendance_punches (
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		in_am TEXT NOT NULL DEFAULT '00:00:00',
		out_am TEXT NOT NULL DEFAULT '00:00:00',
		in_pm TEXT NOT NULL DEFAULT '00:00:00',
		out_pm TEXT NOT NULL DEFAULT '00:00:00',
		is_holiday INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (employee_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_punches_date
		ON attendance_punches(date);

	CREATE TABLE IF NOT EXISTS attendance_results (
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		applied_break_minutes INTEGER NOT NULL,
		net_work_minutes INTEGER NOT NULL,
		actual_rendered_minutes INTEGER NOT NULL,
		days_credited TEXT NOT NULL,
		early_out INTEGER NOT NULL DEFAULT 0,
		is_holiday_attendance INTEGER NOT NULL DEFAULT 0,
		late_deduction_id TEXT,
		late_deduction_value TEXT NOT NULL DEFAULT '0',
		deducted_days TEXT NOT NULL DEFAULT '0',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_employee_date
		ON audit_log(employee_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

func weekdaysToCSV(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func weekdaysFromCSV(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	var out []time.Weekday
	for _, tok := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("bad weekday token %q", tok)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// engine.ScheduleStore
// =============================================================================

func (s *Store) FindShiftAssignments(ctx context.Context, employeeID engine.EmployeeID, date engine.Date) ([]engine.ShiftSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, work_time_id, effective_date, end_date,
		       recurrence, recurrence_interval, days_of_week,
		       occurrence_limit, priority, is_active
		FROM shift_schedules
		WHERE employee_id = ?
		  AND is_active = 1
		  AND effective_date <= ?
		  AND (end_date IS NULL OR end_date = '' OR end_date >= ?)`,
		string(employeeID), date.String(), date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.ShiftSchedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}

func scanSchedule(rows *sql.Rows) (engine.ShiftSchedule, error) {
	var (
		sched                engine.ShiftSchedule
		id, empID, wtID      string
		effective, rec, days string
		endDate              sql.NullString
		active               int
	)
	if err := rows.Scan(&id, &empID, &wtID, &effective, &endDate, &rec,
		&sched.Interval, &days, &sched.OccurrenceLimit, &sched.Priority, &active); err != nil {
		return sched, err
	}
	sched.ID = engine.ScheduleID(id)
	sched.EmployeeID = engine.EmployeeID(empID)
	sched.WorkTimeID = engine.WorkTimeID(wtID)
	sched.Recurrence = engine.RecurrenceType(rec)
	sched.IsActive = active != 0

	eff, err := engine.ParseDate(effective)
	if err != nil {
		return sched, fmt.Errorf("schedule %s: bad effective_date: %w", id, err)
	}
	sched.EffectiveDate = eff
	if endDate.Valid && endDate.String != "" {
		d, err := engine.ParseDate(endDate.String)
		if err != nil {
			return sched, fmt.Errorf("schedule %s: bad end_date: %w", id, err)
		}
		sched.EndDate = &d
	}
	sched.DaysOfWeek, err = weekdaysFromCSV(days)
	if err != nil {
		return sched, fmt.Errorf("schedule %s: %w", id, err)
	}
	return sched, nil
}

func (s *Store) FindDefaultWorkTime(ctx context.Context) (*engine.WorkTime, error) {
	return s.findWorkTimeWhere(ctx, "is_default = 1", nil)
}

func (s *Store) FindWorkTime(ctx context.Context, id engine.WorkTimeID) (*engine.WorkTime, error) {
	return s.findWorkTimeWhere(ctx, "id = ?", []any{string(id)})
}

func (s *Store) findWorkTimeWhere(ctx context.Context, where string, args []any) (*engine.WorkTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, start_time, end_time, total_minutes, is_default,
		       valid_in_start, valid_in_end
		FROM work_times WHERE `+where+` LIMIT 1`, args...)

	var (
		wt                           engine.WorkTime
		id, start, end, vStart, vEnd string
		isDefault                    int
	)
	err := row.Scan(&id, &wt.Name, &start, &end, &wt.TotalMinutes, &isDefault, &vStart, &vEnd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	wt.ID = engine.WorkTimeID(id)
	wt.IsDefault = isDefault != 0
	if wt.StartTime, err = engine.ParseClock(start); err != nil {
		return nil, fmt.Errorf("work_time %s: %w", id, err)
	}
	if wt.EndTime, err = engine.ParseClock(end); err != nil {
		return nil, fmt.Errorf("work_time %s: %w", id, err)
	}
	if wt.ValidInStart, err = engine.ParseClock(vStart); err != nil {
		return nil, fmt.Errorf("work_time %s: %w", id, err)
	}
	if wt.ValidInEnd, err = engine.ParseClock(vEnd); err != nil {
		return nil, fmt.Errorf("work_time %s: %w", id, err)
	}
	return &wt, nil
}

// ListWorkTimes returns every shift definition, ordered by ID.
func (s *Store) ListWorkTimes(ctx context.Context) ([]engine.WorkTime, error) {
	rows, err := func() (*sql.Rows, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.db.QueryContext(ctx, `SELECT id FROM work_times ORDER BY id`)
	}()
	if err != nil {
		return nil, err
	}
	var ids []engine.WorkTimeID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, engine.WorkTimeID(id))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]engine.WorkTime, 0, len(ids))
	for _, id := range ids {
		wt, err := s.FindWorkTime(ctx, id)
		if err != nil {
			return nil, err
		}
		if wt != nil {
			out = append(out, *wt)
		}
	}
	return out, nil
}

// =============================================================================
// engine.BreakStore
// =============================================================================

func (s *Store) FindBreaksForWorkTime(ctx context.Context, id engine.WorkTimeID) ([]engine.BreakDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.start_time, b.end_time,
		       b.valid_break_in_start, b.valid_break_in_end, b.is_shift_split
		FROM break_definitions b
		JOIN work_time_breaks m ON m.break_id = b.id
		WHERE m.work_time_id = ?
		ORDER BY b.start_time`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.BreakDefinition
	for rows.Next() {
		var (
			def                           engine.BreakDefinition
			bid, start, end, vStart, vEnd string
			split                         int
		)
		if err := rows.Scan(&bid, &def.Name, &start, &end, &vStart, &vEnd, &split); err != nil {
			return nil, err
		}
		def.ID = engine.BreakID(bid)
		def.IsShiftSplit = split != 0
		if def.StartTime, err = engine.ParseClock(start); err != nil {
			return nil, fmt.Errorf("break %s: %w", bid, err)
		}
		if def.EndTime, err = engine.ParseClock(end); err != nil {
			return nil, fmt.Errorf("break %s: %w", bid, err)
		}
		if def.ValidBreakInStart, err = engine.ParseClock(vStart); err != nil {
			return nil, fmt.Errorf("break %s: %w", bid, err)
		}
		if def.ValidBreakInEnd, err = engine.ParseClock(vEnd); err != nil {
			return nil, fmt.Errorf("break %s: %w", bid, err)
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

// =============================================================================
// engine.DeductionStore
// =============================================================================

func (s *Store) FindTier(ctx context.Context, workTimeID engine.WorkTimeID, blockIndex int) (*engine.LateDeductionTier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, work_time_id, block_index, name
		FROM late_deduction_tiers
		WHERE work_time_id = ? AND block_index = ?
		LIMIT 1`, string(workTimeID), blockIndex)

	var (
		tier     engine.LateDeductionTier
		id, wtID string
	)
	err := row.Scan(&id, &wtID, &tier.BlockIndex, &tier.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tier.ID = engine.TierID(id)
	tier.WorkTimeID = engine.WorkTimeID(wtID)
	return &tier, nil
}

func (s *Store) FindRules(ctx context.Context, tierID engine.TierID) ([]engine.LateDeductionRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tier_id, min_minutes, max_minutes, deduction_value
		FROM late_deduction_rules
		WHERE tier_id = ?
		ORDER BY min_minutes`, string(tierID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.LateDeductionRule
	for rows.Next() {
		var (
			rule     engine.LateDeductionRule
			id, tid  string
			maxMin   sql.NullInt64
			valueStr string
		)
		if err := rows.Scan(&id, &tid, &rule.MinMinutes, &maxMin, &valueStr); err != nil {
			return nil, err
		}
		rule.ID = engine.RuleID(id)
		rule.TierID = engine.TierID(tid)
		if maxMin.Valid {
			n := int(maxMin.Int64)
			rule.MaxMinutes = &n
		}
		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			return nil, fmt.Errorf("rule %s: bad deduction_value: %w", id, err)
		}
		rule.DeductionValue = value
		out = append(out, rule)
	}
	return out, rows.Err()
}

// =============================================================================
// engine.PunchStore
// =============================================================================

func (s *Store) FindPunches(ctx context.Context, employeeID engine.EmployeeID, date engine.Date) (*engine.PunchRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, date, in_am, out_am, in_pm, out_pm, is_holiday
		FROM attendance_punches
		WHERE employee_id = ? AND date = ?`, string(employeeID), date.String())

	punch, err := scanPunch(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return punch, nil
}

func (s *Store) ListPunchesForMonth(ctx context.Context, year int, month int) ([]engine.PunchRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, date, in_am, out_am, in_pm, out_pm, is_holiday
		FROM attendance_punches
		WHERE date LIKE ? || '%'
		ORDER BY employee_id, date`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.PunchRow
	for rows.Next() {
		punch, err := scanPunch(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *punch)
	}
	return out, rows.Err()
}

func scanPunch(scan func(...any) error) (*engine.PunchRow, error) {
	var (
		empID, dateStr           string
		inAM, outAM, inPM, outPM string
		holiday                  int
	)
	if err := scan(&empID, &dateStr, &inAM, &outAM, &inPM, &outPM, &holiday); err != nil {
		return nil, err
	}
	date, err := engine.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("punch %s: bad date: %w", empID, err)
	}
	var card engine.PunchCard
	for _, f := range []struct {
		raw string
		dst *engine.Clock
	}{
		{inAM, &card.TimeInMorning},
		{outAM, &card.TimeOutMorning},
		{inPM, &card.TimeInAfternoon},
		{outPM, &card.TimeOutAfternoon},
	} {
		c, err := engine.ParseClock(f.raw)
		if err != nil {
			// Malformed punch text normalizes to absent, never an error.
			c = 0
		}
		*f.dst = c
	}
	return &engine.PunchRow{
		EmployeeID: engine.EmployeeID(empID),
		Date:       date,
		Punches:    card,
		IsHoliday:  holiday != 0,
	}, nil
}

// =============================================================================
// engine.ResultStore
// =============================================================================

// UpsertResult writes one result row atomically. This single statement is the
// per-row transaction unit of bulk recalculation; the primary key serializes
// concurrent writes for the same (employee, date).
func (s *Store) UpsertResult(ctx context.Context, result engine.AttendanceResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_results (
			employee_id, date, applied_break_minutes, net_work_minutes,
			actual_rendered_minutes, days_credited, early_out,
			is_holiday_attendance, late_deduction_id, late_deduction_value,
			deducted_days, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			applied_break_minutes = excluded.applied_break_minutes,
			net_work_minutes = excluded.net_work_minutes,
			actual_rendered_minutes = excluded.actual_rendered_minutes,
			days_credited = excluded.days_credited,
			early_out = excluded.early_out,
			is_holiday_attendance = excluded.is_holiday_attendance,
			late_deduction_id = excluded.late_deduction_id,
			late_deduction_value = excluded.late_deduction_value,
			deducted_days = excluded.deducted_days,
			updated_at = excluded.updated_at`,
		string(result.EmployeeID), result.Date.String(),
		result.AppliedBreakMinutes, result.NetWorkMinutes,
		result.ActualRenderedMinutes, result.DaysCredited.String(),
		boolToInt(result.EarlyOut), boolToInt(result.IsHolidayAttendance),
		string(result.LateDeductionID), result.LateDeductionValue.String(),
		result.DeductedDays.String(), time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetResult reads back a stored result. Numeric fields only; diagnostics are
// transient and never persisted.
func (s *Store) GetResult(ctx context.Context, employeeID engine.EmployeeID, date engine.Date) (*engine.AttendanceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT applied_break_minutes, net_work_minutes, actual_rendered_minutes,
		       days_credited, early_out, is_holiday_attendance,
		       late_deduction_id, late_deduction_value, deducted_days
		FROM attendance_results
		WHERE employee_id = ? AND date = ?`, string(employeeID), date.String())

	var (
		result                    engine.AttendanceResult
		credited, value, deducted string
		earlyOut, holiday         int
		ruleID                    sql.NullString
	)
	err := row.Scan(&result.AppliedBreakMinutes, &result.NetWorkMinutes,
		&result.ActualRenderedMinutes, &credited, &earlyOut, &holiday,
		&ruleID, &value, &deducted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result.EmployeeID = employeeID
	result.Date = date
	result.EarlyOut = earlyOut != 0
	result.IsHolidayAttendance = holiday != 0
	if ruleID.Valid {
		result.LateDeductionID = engine.RuleID(ruleID.String)
	}
	if result.DaysCredited, err = decimal.NewFromString(credited); err != nil {
		return nil, err
	}
	if result.LateDeductionValue, err = decimal.NewFromString(value); err != nil {
		return nil, err
	}
	if result.DeductedDays, err = decimal.NewFromString(deducted); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// engine.AuditLog
// =============================================================================

func (s *Store) Append(ctx context.Context, entry engine.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (employee_id, date, action, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(entry.EmployeeID), entry.Date.String(), entry.Action,
		entry.Detail, time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// factory.Sink - configuration writers (seeding and admin tooling)
// =============================================================================

func (s *Store) PutWorkTime(ctx context.Context, wt engine.WorkTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO work_times
			(id, name, start_time, end_time, total_minutes, is_default,
			 valid_in_start, valid_in_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(wt.ID), wt.Name, wt.StartTime.String(), wt.EndTime.String(),
		wt.TotalMinutes, boolToInt(wt.IsDefault),
		wt.ValidInStart.String(), wt.ValidInEnd.String())
	return err
}

func (s *Store) PutBreak(ctx context.Context, def engine.BreakDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO break_definitions
			(id, name, start_time, end_time, valid_break_in_start,
			 valid_break_in_end, is_shift_split)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(def.ID), def.Name, def.StartTime.String(), def.EndTime.String(),
		def.ValidBreakInStart.String(), def.ValidBreakInEnd.String(),
		boolToInt(def.IsShiftSplit))
	return err
}

func (s *Store) MapBreak(ctx context.Context, workTimeID engine.WorkTimeID, breakID engine.BreakID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO work_time_breaks (work_time_id, break_id)
		VALUES (?, ?)`, string(workTimeID), string(breakID))
	return err
}

func (s *Store) PutTier(ctx context.Context, t engine.LateDeductionTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO late_deduction_tiers
			(id, work_time_id, block_index, name)
		VALUES (?, ?, ?, ?)`,
		string(t.ID), string(t.WorkTimeID), t.BlockIndex, t.Name)
	return err
}

func (s *Store) PutRule(ctx context.Context, r engine.LateDeductionRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxMin any
	if r.MaxMinutes != nil {
		maxMin = *r.MaxMinutes
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO late_deduction_rules
			(id, tier_id, min_minutes, max_minutes, deduction_value)
		VALUES (?, ?, ?, ?, ?)`,
		string(r.ID), string(r.TierID), r.MinMinutes, maxMin,
		r.DeductionValue.String())
	return err
}

func (s *Store) PutSchedule(ctx context.Context, sched engine.ShiftSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var endDate any
	if sched.EndDate != nil && !sched.EndDate.IsZero() {
		endDate = sched.EndDate.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO shift_schedules
			(id, employee_id, work_time_id, effective_date, end_date,
			 recurrence, recurrence_interval, days_of_week,
			 occurrence_limit, priority, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(sched.ID), string(sched.EmployeeID), string(sched.WorkTimeID),
		sched.EffectiveDate.String(), endDate, string(sched.Recurrence),
		sched.Interval, weekdaysToCSV(sched.DaysOfWeek),
		sched.OccurrenceLimit, sched.Priority, boolToInt(sched.IsActive))
	return err
}

func (s *Store) PutPunch(ctx context.Context, row engine.PunchRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO attendance_punches
			(employee_id, date, in_am, out_am, in_pm, out_pm, is_holiday)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(row.EmployeeID), row.Date.String(),
		row.Punches.TimeInMorning.String(), row.Punches.TimeOutMorning.String(),
		row.Punches.TimeInAfternoon.String(), row.Punches.TimeOutAfternoon.String(),
		boolToInt(row.IsHoliday))
	return err
}
