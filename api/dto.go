/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  Defines the JSON shapes exchanged over the wire. DTOs are kept separate
  from domain types so the engine package never depends on serialization
  concerns and the wire format can evolve independently.

CONVENTIONS:
  - Dates are "YYYY-MM-DD" strings.
  - Clock times are "HH:MM:SS" strings; empty string means no punch.
  - Fractions (days credited, deductions) are decimal strings so clients
    never see float artifacts like 0.8999999.

SEE ALSO:
  - handlers.go: Handlers that populate these
  - engine/types.go: Domain types these mirror
*/
package api

// ComputeRequest asks for a single employee/date attendance evaluation.
type ComputeRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	InAM       string `json:"in_am,omitempty"`
	OutAM      string `json:"out_am,omitempty"`
	InPM       string `json:"in_pm,omitempty"`
	OutPM      string `json:"out_pm,omitempty"`
	IsHoliday  bool   `json:"is_holiday,omitempty"`
}

// ResultDTO is the wire form of an attendance result.
type ResultDTO struct {
	EmployeeID            string           `json:"employee_id"`
	Date                  string           `json:"date"`
	AppliedBreakMinutes   int              `json:"applied_break_minutes"`
	NetWorkMinutes        int              `json:"net_work_minutes"`
	ActualRenderedMinutes int              `json:"actual_rendered_minutes"`
	DaysCredited          string           `json:"days_credited"`
	EarlyOut              bool             `json:"early_out"`
	IsHoliday             bool             `json:"is_holiday"`
	LateDeductionID       string           `json:"late_deduction_id,omitempty"`
	LateDeductionValue    string           `json:"late_deduction_value"`
	DeductedDays          string           `json:"deducted_days"`
	IgnoredLateInSeconds  int64            `json:"ignored_late_in_seconds"`
	Blocks                []BlockDTO       `json:"blocks"`
	AppliedRules          []AppliedRuleDTO `json:"applied_rules,omitempty"`
	Notes                 []string         `json:"notes,omitempty"`
}

// BlockDTO describes one working block between breaks.
type BlockDTO struct {
	Index         int    `json:"index"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Seconds       int64  `json:"seconds"`
	WorkedSeconds int64  `json:"worked_seconds"`
}

// AppliedRuleDTO records one late-deduction rule hit.
type AppliedRuleDTO struct {
	BlockIndex  int    `json:"block_index"`
	TierID      string `json:"tier_id"`
	RuleID      string `json:"rule_id"`
	LateMinutes int    `json:"late_minutes"`
	Value       string `json:"value"`
}

// RecalcRequest asks for a month-wide recalculation.
type RecalcRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// RecalcReportDTO summarizes a batch run.
type RecalcReportDTO struct {
	Total    int             `json:"total"`
	Computed int             `json:"computed"`
	Failed   int             `json:"failed"`
	Failures []RowFailureDTO `json:"failures,omitempty"`
}

// RowFailureDTO is one row that could not be computed.
type RowFailureDTO struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Error      string `json:"error"`
}

// WorkTimeDTO is the wire form of a shift template.
type WorkTimeDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	TotalMinutes int    `json:"total_minutes"`
	IsDefault    bool   `json:"is_default"`
	ValidInStart string `json:"valid_in_start,omitempty"`
	ValidInEnd   string `json:"valid_in_end,omitempty"`
}

// ShiftResolutionDTO reports which shift applies to an employee on a date.
type ShiftResolutionDTO struct {
	EmployeeID string      `json:"employee_id"`
	Date       string      `json:"date"`
	WorkTime   WorkTimeDTO `json:"work_time"`
	ScheduleID string      `json:"schedule_id,omitempty"`
	IsDefault  bool        `json:"is_default"`
	Candidates []string    `json:"candidates,omitempty"`
}

// ErrorResponse is the standard error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
