/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Attendance computation endpoint (status mapping, persistence)
- Month recalculation endpoint
- Reference data endpoints (work times, shift resolution, stored results)
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
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
		ID:           "br-lunch",
		Name:         "Lunch",
		StartTime:    engine.MustClock("12:00:00"),
		EndTime:      engine.MustClock("13:00:00"),
		IsShiftSplit: true,
	}))
	require.NoError(t, mem.MapBreak(ctx, "wt-day", "br-lunch"))
	require.NoError(t, mem.PutSchedule(ctx, engine.ShiftSchedule{
		ID:            "sched-1",
		EmployeeID:    "emp-1",
		WorkTimeID:    "wt-day",
		EffectiveDate: engine.NewDate(2024, time.March, 1),
		Recurrence:    engine.RecurrenceDaily,
		IsActive:      true,
	}))
	min59 := 59
	require.NoError(t, mem.PutTier(ctx, engine.LateDeductionTier{
		ID: "tier-any", WorkTimeID: "wt-day", BlockIndex: 0, Name: "Any Block",
	}))
	require.NoError(t, mem.PutRule(ctx, engine.LateDeductionRule{
		ID: "rule-20", TierID: "tier-any", MinMinutes: 20, MaxMinutes: &min59,
		DeductionValue: decimal.RequireFromString("0.10"),
	}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	srv := httptest.NewServer(NewRouter(NewHandler(mem, log)))
	t.Cleanup(srv.Close)
	return srv, mem
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// =============================================================================
// COMPUTE ENDPOINT TESTS
// =============================================================================

func TestComputeAttendance_OK(t *testing.T) {
	// GIVEN: A scheduled employee with a 25-minute-late morning punch
	// WHEN: POSTing a compute request
	// THEN: 200 with credited/deducted fractions, and the result persisted

	srv, mem := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/attendance/compute", ComputeRequest{
		EmployeeID: "emp-1",
		Date:       "2024-03-11",
		InAM:       "09:30:00",
		OutAM:      "12:00:00",
		InPM:       "13:00:00",
		OutPM:      "18:00:00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decodeBody[ResultDTO](t, resp)
	assert.Equal(t, "emp-1", dto.EmployeeID)
	assert.Equal(t, "0.90", dto.DaysCredited)
	assert.Equal(t, "0.10", dto.DeductedDays)
	assert.Equal(t, 450, dto.ActualRenderedMinutes)
	require.Len(t, dto.AppliedRules, 1)
	assert.Equal(t, "rule-20", dto.AppliedRules[0].RuleID)

	stored, err := mem.GetResult(context.Background(), "emp-1", engine.NewDate(2024, time.March, 11))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "0.90", stored.DaysCredited.StringFixed(2))

	entries := mem.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, engine.EmployeeID("emp-1"), entries[0].EmployeeID)
	assert.Equal(t, "computed", entries[0].Action)
	assert.Contains(t, entries[0].Detail, "credited 0.90")
}

func TestComputeAttendance_NoShift_Unprocessable(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/attendance/compute", ComputeRequest{
		EmployeeID: "emp-unknown",
		Date:       "2024-03-11",
		InAM:       "09:00:00",
		OutAM:      "12:00:00",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestComputeAttendance_BadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		req  ComputeRequest
	}{
		{"missing employee", ComputeRequest{Date: "2024-03-11"}},
		{"bad date", ComputeRequest{EmployeeID: "emp-1", Date: "11/03/2024"}},
		{"bad clock", ComputeRequest{EmployeeID: "emp-1", Date: "2024-03-11", InAM: "9 am"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/attendance/compute", tc.req)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

// =============================================================================
// RECALC ENDPOINT TESTS
// =============================================================================

func TestRecalcMonth_ReportsFailures(t *testing.T) {
	srv, mem := newTestServer(t)
	ctx := context.Background()

	card := engine.PunchCard{
		TimeInMorning:    engine.MustClock("09:00:00"),
		TimeOutMorning:   engine.MustClock("12:00:00"),
		TimeInAfternoon:  engine.MustClock("13:00:00"),
		TimeOutAfternoon: engine.MustClock("18:00:00"),
	}
	require.NoError(t, mem.PutPunch(ctx, engine.PunchRow{
		EmployeeID: "emp-1", Date: engine.NewDate(2024, time.March, 11), Punches: card,
	}))
	require.NoError(t, mem.PutPunch(ctx, engine.PunchRow{
		EmployeeID: "emp-unknown", Date: engine.NewDate(2024, time.March, 12), Punches: card,
	}))

	resp := postJSON(t, srv.URL+"/api/attendance/recalc", RecalcRequest{Year: 2024, Month: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decodeBody[RecalcReportDTO](t, resp)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Computed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "emp-unknown", report.Failures[0].EmployeeID)
}

func TestRecalcMonth_BadMonth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/attendance/recalc", RecalcRequest{Year: 2024, Month: 13})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// REFERENCE DATA ENDPOINT TESTS
// =============================================================================

func TestListWorkTimes(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/worktimes")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dtos := decodeBody[[]WorkTimeDTO](t, resp)
	require.Len(t, dtos, 1)
	assert.Equal(t, "wt-day", dtos[0].ID)
	assert.Equal(t, "09:00:00", dtos[0].StartTime)
	assert.Equal(t, "09:05:00", dtos[0].ValidInEnd)
}

func TestGetShift_ResolvesAssignment(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/employees/emp-1/shift?date=2024-03-11")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decodeBody[ShiftResolutionDTO](t, resp)
	assert.Equal(t, "wt-day", dto.WorkTime.ID)
	assert.Equal(t, "sched-1", dto.ScheduleID)
	assert.False(t, dto.IsDefault)
}

func TestGetShift_NoShift_Unprocessable(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/employees/emp-unknown/shift?date=2024-03-11")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetResult_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/results/emp-1?date=2024-03-11")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
