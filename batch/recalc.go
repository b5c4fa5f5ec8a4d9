/*
Package batch drives bulk attendance recalculation.

PURPOSE:
  Monthly payroll prep recomputes every punch row in a month. The engine is
  pure; this package owns the loop:
  - one result upsert per row, so a single row's failure never aborts the
    batch
  - failures collected per row and reported in the run summary
  - rows processed sequentially; same-(employee, date) serialization is the
    persistence layer's concern

SEE ALSO:
  - engine/compute.go: the per-row computation
  - store/sqlite:      the per-row upsert transaction unit
*/
package batch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/warp/attendance-engine/engine"
)

// RowFailure is one uncomputable or unpersistable row.
type RowFailure struct {
	EmployeeID engine.EmployeeID
	Date       engine.Date
	Err        error
}

func (f RowFailure) String() string {
	return fmt.Sprintf("%s/%s: %v", f.EmployeeID, f.Date, f.Err)
}

// RecalcReport summarizes one recalculation run.
type RecalcReport struct {
	Total    int
	Computed int
	Failures []RowFailure
}

// Recalculator recomputes stored punch rows through the engine.
type Recalculator struct {
	Engine  *engine.AttendanceEngine
	Punches engine.PunchStore
	Results engine.ResultStore
	Audit   engine.AuditLog
	Log     *logrus.Logger
}

// RecalcMonth recomputes every punch row in (year, month). Row failures are
// collected, logged, and reported; the batch always runs to completion.
func (r *Recalculator) RecalcMonth(ctx context.Context, year, month int) (*RecalcReport, error) {
	rows, err := r.Punches.ListPunchesForMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("list punches for %04d-%02d: %w", year, month, err)
	}

	report := &RecalcReport{Total: len(rows)}
	for _, row := range rows {
		if err := r.recalcRow(ctx, row); err != nil {
			report.Failures = append(report.Failures, RowFailure{
				EmployeeID: row.EmployeeID,
				Date:       row.Date,
				Err:        err,
			})
			r.logger().WithFields(logrus.Fields{
				"employee": row.EmployeeID,
				"date":     row.Date.String(),
			}).WithError(err).Warn("attendance row skipped")
			continue
		}
		report.Computed++
	}
	return report, nil
}

// RecalcOne recomputes a single stored row.
func (r *Recalculator) RecalcOne(ctx context.Context, employeeID engine.EmployeeID, date engine.Date) (*engine.AttendanceResult, error) {
	row, err := r.Punches.FindPunches(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("no punch row for %s on %s", employeeID, date)
	}
	result, err := r.Engine.Compute(ctx, engine.ComputeInput{
		EmployeeID: row.EmployeeID,
		Date:       row.Date,
		Punches:    row.Punches,
		IsHoliday:  row.IsHoliday,
	})
	if err != nil {
		return nil, err
	}
	if err := r.Results.UpsertResult(ctx, *result); err != nil {
		return nil, fmt.Errorf("upsert result: %w", err)
	}
	r.appendAudit(ctx, result)
	return result, nil
}

func (r *Recalculator) recalcRow(ctx context.Context, row engine.PunchRow) error {
	result, err := r.Engine.Compute(ctx, engine.ComputeInput{
		EmployeeID: row.EmployeeID,
		Date:       row.Date,
		Punches:    row.Punches,
		IsHoliday:  row.IsHoliday,
	})
	if err != nil {
		return err
	}
	if err := r.Results.UpsertResult(ctx, *result); err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	r.appendAudit(ctx, result)
	return nil
}

// appendAudit is best effort: the numbers are already persisted and an audit
// hiccup must not fail the row.
func (r *Recalculator) appendAudit(ctx context.Context, result *engine.AttendanceResult) {
	if r.Audit == nil {
		return
	}
	entry := engine.AuditEntry{
		EmployeeID: result.EmployeeID,
		Date:       result.Date,
		Action:     "recalculated",
		Detail: fmt.Sprintf("credited %s, deducted %s, rendered %d min",
			result.DaysCredited.StringFixed(2), result.DeductedDays.StringFixed(2), result.ActualRenderedMinutes),
	}
	if err := r.Audit.Append(ctx, entry); err != nil {
		r.logger().WithError(err).Warn("audit append failed")
	}
}

func (r *Recalculator) logger() *logrus.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logrus.StandardLogger()
}
