package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/timecalc"
	"github.com/lengolf/timeclock-api/pkg/storage"
)

func newTestExportService(t *testing.T, entries []models.TimeEntry) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)
	policy := timecalc.DefaultPolicy()
	svc := NewExportService(&mockRangeStore{entries: entries}, policy, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil)
	return svc, dir
}

func TestExportServiceGenerateShiftCSV(t *testing.T) {
	policy := timecalc.DefaultPolicy()
	svc, dir := newTestExportService(t, dayShiftEntries(policy.Location))

	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeShifts,
		Params: models.ReportJobParams{StartDate: "2024-11-01", EndDate: "2024-11-30", Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/export/"))
	assert.NotEmpty(t, result.Token)

	payload, err := os.ReadFile(filepath.Join(dir, result.RelativePath))
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Staff ID,Staff Name,Date")
	assert.Contains(t, content, "Nok")
	assert.Contains(t, content, "8.0")
}

func TestExportServiceGenerateAnalyticsXLSX(t *testing.T) {
	policy := timecalc.DefaultPolicy()
	svc, dir := newTestExportService(t, dayShiftEntries(policy.Location))

	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeAnalytics,
		Params: models.ReportJobParams{StartDate: "2024-11-01", EndDate: "2024-11-30", Format: models.ReportFormatXLSX},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".xlsx"))

	info, err := os.Stat(filepath.Join(dir, result.RelativePath))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateRejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestExportService(t, nil)

	job := &models.ReportJob{
		ID:     "job-3",
		Type:   models.ReportTypeShifts,
		Params: models.ReportJobParams{StartDate: "2024-11-01", EndDate: "2024-11-30", Format: models.ReportFormat("doc")},
	}
	_, err := svc.Generate(context.Background(), job)
	require.Error(t, err)
}

func TestExportServiceShiftDatasetIncludesOrphanRows(t *testing.T) {
	policy := timecalc.DefaultPolicy()
	entries := []models.TimeEntry{
		{ID: "x", StaffID: 9, StaffName: "Nok", Action: models.ActionClockOut, Timestamp: time.Date(2024, 11, 4, 18, 0, 0, 0, policy.Location)},
	}
	svc, dir := newTestExportService(t, entries)

	job := &models.ReportJob{
		ID:     "job-4",
		Type:   models.ReportTypeShifts,
		Params: models.ReportJobParams{StartDate: "2024-11-01", EndDate: "2024-11-30", Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	payload, err := os.ReadFile(filepath.Join(dir, result.RelativePath))
	require.NoError(t, err)
	assert.Contains(t, string(payload), "clock-out with no preceding clock-in")
}
