package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/service"
	"github.com/lengolf/timeclock-api/internal/timecalc"
)

type rangeStoreStub struct {
	entries []models.TimeEntry
}

func (s *rangeStoreStub) ListRange(ctx context.Context, start, end time.Time, staffID *int) ([]models.TimeEntry, error) {
	return s.entries, nil
}

func newReportHandler(entries []models.TimeEntry) *ReportHandler {
	svc := service.NewReportService(&rangeStoreStub{entries: entries}, nil, timecalc.DefaultPolicy(), time.Minute, nil, nil)
	return NewReportHandler(svc)
}

func TestReportHandlerShifts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	loc := timecalc.DefaultPolicy().Location
	handler := newReportHandler([]models.TimeEntry{
		{ID: "a", StaffID: 9, StaffName: "Nok", Action: models.ActionClockIn, Timestamp: time.Date(2024, 11, 4, 9, 0, 0, 0, loc)},
		{ID: "b", StaffID: 9, StaffName: "Nok", Action: models.ActionClockOut, Timestamp: time.Date(2024, 11, 4, 18, 0, 0, 0, loc)},
	})

	c, w := newGinContext(http.MethodGet, "/time-clock/report/shifts?start_date=2024-11-01&end_date=2024-11-30", nil)
	handler.Shifts(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			TotalEntries int                  `json:"total_entries"`
			Shifts       []timecalc.WorkShift `json:"shifts"`
		} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.TotalEntries)
	require.Len(t, envelope.Data.Shifts, 1)
	assert.Equal(t, 8.0, envelope.Data.Shifts[0].NetHours)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestReportHandlerShiftsMissingWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportHandler(nil)

	c, w := newGinContext(http.MethodGet, "/time-clock/report/shifts", nil)
	handler.Shifts(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerAnalytics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	loc := timecalc.DefaultPolicy().Location
	handler := newReportHandler([]models.TimeEntry{
		{ID: "a", StaffID: 9, StaffName: "Nok", Action: models.ActionClockIn, Timestamp: time.Date(2024, 11, 4, 9, 0, 0, 0, loc)},
		{ID: "b", StaffID: 9, StaffName: "Nok", Action: models.ActionClockOut, Timestamp: time.Date(2024, 11, 4, 18, 0, 0, 0, loc)},
	})

	c, w := newGinContext(http.MethodGet, "/time-clock/report/analytics?start_date=2024-11-01&end_date=2024-11-30", nil)
	handler.Analytics(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			Staff []timecalc.StaffTimeAnalytics `json:"staff"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Staff, 1)
	assert.Equal(t, 8.0, envelope.Data.Staff[0].TotalHours)
}

func TestReportHandlerRejectsNonNumericStaffID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportHandler(nil)

	c, w := newGinContext(http.MethodGet, "/time-clock/report/shifts?start_date=2024-11-01&end_date=2024-11-30&staff_id=abc", nil)
	handler.Shifts(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
