/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance computation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Attendance:
    POST   /api/attendance/compute     Compute one employee/date row
    POST   /api/attendance/recalc      Recompute a whole month

  Reference data:
    GET    /api/worktimes              List shift templates
    GET    /api/employees/{id}/shift   Resolve the shift for a date
    GET    /api/results/{id}           Fetch a stored result for a date

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (any backend implementing the Store interface)
  - Engine: The pure computation pipeline
  - Recalc: Batch recalculation over stored punch rows

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, recalculator)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 422: Computation refused (no shift found, invalid shift times)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/attendance-engine/batch"
	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence surface the API needs. Both the in-memory store
// and the SQLite store satisfy it.
type Store interface {
	engine.ScheduleStore
	engine.BreakStore
	engine.DeductionStore
	engine.PunchStore
	engine.ResultStore
	engine.AuditLog

	ListWorkTimes(ctx context.Context) ([]engine.WorkTime, error)
	GetResult(ctx context.Context, employeeID engine.EmployeeID, date engine.Date) (*engine.AttendanceResult, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  Store
	Engine *engine.AttendanceEngine
	Recalc *batch.Recalculator
	Log    *logrus.Logger
}

// NewHandler wires an engine and recalculator over the given store.
func NewHandler(store Store, log *logrus.Logger) *Handler {
	eng := &engine.AttendanceEngine{
		Schedules:  store,
		Breaks:     store,
		Deductions: store,
	}
	return &Handler{
		Store:  store,
		Engine: eng,
		Recalc: &batch.Recalculator{
			Engine:  eng,
			Punches: store,
			Results: store,
			Audit:   store,
			Log:     log,
		},
		Log: log,
	}
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ComputeAttendance computes and stores one employee/date result.
// POST /api/attendance/compute
func (h *Handler) ComputeAttendance(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	punches, err := parsePunches(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid punch time (use HH:MM:SS)", err)
		return
	}

	result, err := h.Engine.Compute(r.Context(), engine.ComputeInput{
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		Date:       date,
		Punches:    punches,
		IsHoliday:  req.IsHoliday,
	})
	if err != nil {
		if engine.IsFatal(err) {
			writeError(w, http.StatusUnprocessableEntity, "Cannot compute attendance", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Computation failed", err)
		return
	}

	if err := h.Store.UpsertResult(r.Context(), *result); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store result", err)
		return
	}
	h.appendAudit(r.Context(), result)

	writeJSON(w, http.StatusOK, toResultDTO(result))
}

// appendAudit is best effort: the result is already persisted and an audit
// hiccup must not fail the request.
func (h *Handler) appendAudit(ctx context.Context, result *engine.AttendanceResult) {
	entry := engine.AuditEntry{
		EmployeeID: result.EmployeeID,
		Date:       result.Date,
		Action:     "computed",
		Detail: fmt.Sprintf("credited %s, deducted %s, rendered %d min",
			result.DaysCredited.StringFixed(2), result.DeductedDays.StringFixed(2), result.ActualRenderedMinutes),
	}
	if err := h.Store.Append(ctx, entry); err != nil {
		h.Log.WithError(err).WithField("employee_id", result.EmployeeID).Warn("audit append failed")
	}
}

// RecalcMonth recomputes every stored punch row in a month.
// POST /api/attendance/recalc
func (h *Handler) RecalcMonth(w http.ResponseWriter, r *http.Request) {
	var req RecalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Year < 1 || req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "year and month are required", nil)
		return
	}

	report, err := h.Recalc.RecalcMonth(r.Context(), req.Year, req.Month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Recalculation failed", err)
		return
	}

	dto := RecalcReportDTO{
		Total:    report.Total,
		Computed: report.Computed,
		Failed:   len(report.Failures),
	}
	for _, f := range report.Failures {
		dto.Failures = append(dto.Failures, RowFailureDTO{
			EmployeeID: string(f.EmployeeID),
			Date:       f.Date.String(),
			Error:      f.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

// ListWorkTimes returns all shift templates.
// GET /api/worktimes
func (h *Handler) ListWorkTimes(w http.ResponseWriter, r *http.Request) {
	workTimes, err := h.Store.ListWorkTimes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list work times", err)
		return
	}

	dtos := make([]WorkTimeDTO, len(workTimes))
	for i, wt := range workTimes {
		dtos[i] = toWorkTimeDTO(wt)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetShift resolves the effective shift for an employee on a date.
// GET /api/employees/{id}/shift?date=YYYY-MM-DD
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	employeeID := engine.EmployeeID(chi.URLParam(r, "id"))
	date, err := engine.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	resolver := &engine.ShiftResolver{Schedules: h.Store}
	resolved, err := resolver.Resolve(r.Context(), employeeID, date)
	if err != nil {
		if engine.IsFatal(err) {
			writeError(w, http.StatusUnprocessableEntity, "No shift applies", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Shift resolution failed", err)
		return
	}

	dto := ShiftResolutionDTO{
		EmployeeID: string(employeeID),
		Date:       date.String(),
		WorkTime:   toWorkTimeDTO(resolved.WorkTime),
		IsDefault:  resolved.Assignment == nil,
	}
	if resolved.Assignment != nil {
		dto.ScheduleID = string(resolved.Assignment.ID)
	}
	for _, c := range resolved.Candidates {
		dto.Candidates = append(dto.Candidates, string(c.ID))
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetResult returns the stored result for an employee and date.
// GET /api/results/{id}?date=YYYY-MM-DD
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	employeeID := engine.EmployeeID(chi.URLParam(r, "id"))
	date, err := engine.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Store.GetResult(r.Context(), employeeID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load result", err)
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "Result not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toResultDTO(result))
}

// =============================================================================
// HELPERS
// =============================================================================

func parsePunches(req ComputeRequest) (engine.PunchCard, error) {
	var card engine.PunchCard
	fields := []struct {
		raw string
		dst *engine.Clock
	}{
		{req.InAM, &card.TimeInMorning},
		{req.OutAM, &card.TimeOutMorning},
		{req.InPM, &card.TimeInAfternoon},
		{req.OutPM, &card.TimeOutAfternoon},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		c, err := engine.ParseClock(f.raw)
		if err != nil {
			return engine.PunchCard{}, err
		}
		*f.dst = c
	}
	return card, nil
}

func toResultDTO(result *engine.AttendanceResult) ResultDTO {
	dto := ResultDTO{
		EmployeeID:            string(result.EmployeeID),
		Date:                  result.Date.String(),
		AppliedBreakMinutes:   result.AppliedBreakMinutes,
		NetWorkMinutes:        result.NetWorkMinutes,
		ActualRenderedMinutes: result.ActualRenderedMinutes,
		DaysCredited:          result.DaysCredited.StringFixed(2),
		EarlyOut:              result.EarlyOut,
		IsHoliday:             result.IsHolidayAttendance,
		LateDeductionID:       string(result.LateDeductionID),
		LateDeductionValue:    result.LateDeductionValue.String(),
		DeductedDays:          result.DeductedDays.StringFixed(2),
		IgnoredLateInSeconds:  result.Diagnostics.IgnoredLateInSeconds,
		Notes:                 result.Diagnostics.Notes,
	}
	for _, b := range result.Diagnostics.Blocks {
		dto.Blocks = append(dto.Blocks, BlockDTO{
			Index:         b.Index,
			Start:         b.Interval.Start.Format(time.RFC3339),
			End:           b.Interval.End.Format(time.RFC3339),
			Seconds:       b.Seconds,
			WorkedSeconds: b.WorkedSeconds,
		})
	}
	for _, a := range result.Diagnostics.AppliedRules {
		dto.AppliedRules = append(dto.AppliedRules, AppliedRuleDTO{
			BlockIndex:  a.BlockIndex,
			TierID:      string(a.TierID),
			RuleID:      string(a.RuleID),
			LateMinutes: a.LateMinutes,
			Value:       a.Value.String(),
		})
	}
	return dto
}

func toWorkTimeDTO(wt engine.WorkTime) WorkTimeDTO {
	dto := WorkTimeDTO{
		ID:           string(wt.ID),
		Name:         wt.Name,
		StartTime:    wt.StartTime.String(),
		EndTime:      wt.EndTime.String(),
		TotalMinutes: wt.TotalMinutes,
		IsDefault:    wt.IsDefault,
	}
	if !wt.ValidInStart.IsZero() {
		dto.ValidInStart = wt.ValidInStart.String()
	}
	if !wt.ValidInEnd.IsZero() {
		dto.ValidInEnd = wt.ValidInEnd.String()
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
