package dto

import (
	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/timecalc"
)

// ReportQuery carries the parsed window for shift and analytics reports.
type ReportQuery struct {
	StartDate string `form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" validate:"required,datetime=2006-01-02"`
	StaffID   *int   `form:"staff_id"`
}

// ShiftReportResponse is the payload for GET /time-clock/report/shifts.
type ShiftReportResponse struct {
	StartDate      string                    `json:"start_date"`
	EndDate        string                    `json:"end_date"`
	TotalEntries   int                       `json:"total_entries"`
	Shifts         []timecalc.WorkShift      `json:"shifts"`
	OrphanClockOuts []timecalc.OrphanClockOut `json:"orphan_clock_outs,omitempty"`
}

// AnalyticsReportResponse is the payload for GET /time-clock/report/analytics.
type AnalyticsReportResponse struct {
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Staff     []timecalc.StaffTimeAnalytics `json:"staff"`
}

// ExportRequest captures POST /time-clock/exports payload.
type ExportRequest struct {
	Type      models.ReportType   `json:"type"`
	StartDate string              `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string              `json:"end_date" validate:"required,datetime=2006-01-02"`
	StaffID   *int                `json:"staff_id,omitempty"`
	Format    models.ReportFormat `json:"format"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Type      models.ReportType   `json:"type"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
