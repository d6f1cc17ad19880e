package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lengolf/timeclock-api/internal/dto"
	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/timecalc"
	appErrors "github.com/lengolf/timeclock-api/pkg/errors"
)

type mockRangeStore struct {
	entries   []models.TimeEntry
	lastStart time.Time
	lastEnd   time.Time
	calls     int
}

func (m *mockRangeStore) ListRange(ctx context.Context, start, end time.Time, staffID *int) ([]models.TimeEntry, error) {
	m.calls++
	m.lastStart = start
	m.lastEnd = end
	return m.entries, nil
}

func dayShiftEntries(loc *time.Location) []models.TimeEntry {
	return []models.TimeEntry{
		{ID: "a", StaffID: 9, StaffName: "Nok", Action: models.ActionClockIn, Timestamp: time.Date(2024, 11, 4, 9, 0, 0, 0, loc)},
		{ID: "b", StaffID: 9, StaffName: "Nok", Action: models.ActionClockOut, Timestamp: time.Date(2024, 11, 4, 18, 0, 0, 0, loc)},
	}
}

func TestReportServiceShiftReport(t *testing.T) {
	policy := timecalc.DefaultPolicy()
	store := &mockRangeStore{entries: dayShiftEntries(policy.Location)}
	svc := NewReportService(store, nil, policy, time.Minute, nil, nil)

	resp, cached, err := svc.ShiftReport(context.Background(), dto.ReportQuery{StartDate: "2024-11-01", EndDate: "2024-11-30"})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, resp.TotalEntries)
	require.Len(t, resp.Shifts, 1)
	assert.Equal(t, 8.0, resp.Shifts[0].NetHours)
	assert.Empty(t, resp.OrphanClockOuts)
}

func TestReportServiceWindowBoundsInBusinessTimezone(t *testing.T) {
	policy := timecalc.DefaultPolicy()
	store := &mockRangeStore{}
	svc := NewReportService(store, nil, policy, time.Minute, nil, nil)

	_, _, err := svc.ShiftReport(context.Background(), dto.ReportQuery{StartDate: "2024-11-01", EndDate: "2024-11-01"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, policy.Location), store.lastStart)
	// The upper bound is the start of the next day so that entries with
	// sub-second timestamps inside the last second still fall in the window.
	assert.Equal(t, time.Date(2024, 11, 2, 0, 0, 0, 0, policy.Location), store.lastEnd)
	assert.True(t, store.lastEnd.After(time.Date(2024, 11, 1, 23, 59, 59, 500_000_000, policy.Location)))
}

func TestReportServiceRejectsInvertedWindow(t *testing.T) {
	svc := NewReportService(&mockRangeStore{}, nil, timecalc.DefaultPolicy(), time.Minute, nil, nil)

	_, _, err := svc.ShiftReport(context.Background(), dto.ReportQuery{StartDate: "2024-11-30", EndDate: "2024-11-01"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestReportServiceRejectsMalformedDates(t *testing.T) {
	svc := NewReportService(&mockRangeStore{}, nil, timecalc.DefaultPolicy(), time.Minute, nil, nil)

	_, _, err := svc.ShiftReport(context.Background(), dto.ReportQuery{StartDate: "04/11/2024", EndDate: "2024-11-30"})
	require.Error(t, err)
}

func TestReportServiceAnalyticsReport(t *testing.T) {
	policy := timecalc.DefaultPolicy()
	store := &mockRangeStore{entries: dayShiftEntries(policy.Location)}
	svc := NewReportService(store, nil, policy, time.Minute, nil, nil)

	resp, cached, err := svc.AnalyticsReport(context.Background(), dto.ReportQuery{StartDate: "2024-11-01", EndDate: "2024-11-30"})
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, resp.Staff, 1)
	assert.Equal(t, 9, resp.Staff[0].StaffID)
	assert.Equal(t, 8.0, resp.Staff[0].TotalHours)
	assert.Equal(t, 1, resp.Staff[0].DaysWorked)
}

func TestReportServiceCorruptEntriesDegradeTo422(t *testing.T) {
	policy := timecalc.DefaultPolicy()
	store := &mockRangeStore{entries: []models.TimeEntry{{ID: "bad", StaffID: 0, Action: models.ActionClockIn, Timestamp: time.Now()}}}
	svc := NewReportService(store, nil, policy, time.Minute, nil, nil)

	_, _, err := svc.ShiftReport(context.Background(), dto.ReportQuery{StartDate: "2024-11-01", EndDate: "2024-11-30"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBadEntryData.Code, appErr.Code)
}
