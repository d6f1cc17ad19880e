package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/timecalc"
	"github.com/lengolf/timeclock-api/pkg/export"
	"github.com/lengolf/timeclock-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheetName string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds flattened shift datasets and persists rendered files.
type ExportService struct {
	entries rangeEntryStore
	policy  timecalc.Policy
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	xlsx    xlsxRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(entries rangeEntryStore, policy timecalc.Policy, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		entries: entries,
		policy:  policy,
		storage: store,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		xlsx:    export.NewXLSXExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for the job definition and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case models.ReportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	window := fmt.Sprintf("%s_%s", job.Params.StartDate, job.Params.EndDate)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), window, timestamp, job.Params.Format)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	start, end, err := parseReportWindow(job.Params.StartDate, job.Params.EndDate, s.policy.Location)
	if err != nil {
		return export.Dataset{}, "", err
	}
	entries, err := s.entries.ListRange(ctx, start, end, job.Params.StaffID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	result, err := timecalc.CalculateWorkShifts(entries, s.policy)
	if err != nil {
		return export.Dataset{}, "", err
	}

	switch job.Type {
	case models.ReportTypeShifts:
		title := fmt.Sprintf("Work Shifts %s to %s", job.Params.StartDate, job.Params.EndDate)
		return buildShiftDataset(result, s.policy.Location), title, nil
	case models.ReportTypeAnalytics:
		title := fmt.Sprintf("Staff Analytics %s to %s", job.Params.StartDate, job.Params.EndDate)
		analytics := timecalc.CalculateStaffAnalytics(result.Shifts, entries)
		return buildAnalyticsDataset(analytics), title, nil
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

// buildShiftDataset flattens shifts into scalar columns. Orphan clock-outs
// are listed in their own rows so the file accounts for every issue.
func buildShiftDataset(result timecalc.Result, loc *time.Location) export.Dataset {
	headers := []string{"Staff ID", "Staff Name", "Date", "Clock In", "Clock Out", "Total Minutes", "Break Minutes", "Net Hours", "Overtime Hours", "Crosses Midnight", "Complete", "Notes", "Issues"}
	rows := make([]map[string]string, 0, len(result.Shifts)+len(result.Orphans))
	for _, shift := range result.Shifts {
		clockOut := ""
		if shift.ClockOutTime != nil {
			clockOut = shift.ClockOutTime.In(loc).Format("2006-01-02 15:04")
		}
		rows = append(rows, map[string]string{
			"Staff ID":         fmt.Sprintf("%d", shift.StaffID),
			"Staff Name":       shift.StaffName,
			"Date":             shift.Date,
			"Clock In":         shift.ClockInTime.In(loc).Format("2006-01-02 15:04"),
			"Clock Out":        clockOut,
			"Total Minutes":    fmt.Sprintf("%d", shift.TotalMinutes),
			"Break Minutes":    fmt.Sprintf("%d", shift.BreakMinutes),
			"Net Hours":        fmt.Sprintf("%.1f", shift.NetHours),
			"Overtime Hours":   fmt.Sprintf("%.1f", shift.OvertimeHours),
			"Crosses Midnight": fmt.Sprintf("%t", shift.CrossesMidnight),
			"Complete":         fmt.Sprintf("%t", shift.IsComplete),
			"Notes":            strings.Join(shift.ShiftNotes, "; "),
			"Issues":           strings.Join(shift.ValidationIssues, "; "),
		})
	}
	for _, orphan := range result.Orphans {
		rows = append(rows, map[string]string{
			"Staff ID":   fmt.Sprintf("%d", orphan.StaffID),
			"Staff Name": orphan.StaffName,
			"Date":       orphan.Timestamp.In(loc).Format("2006-01-02"),
			"Clock Out":  orphan.Timestamp.In(loc).Format("2006-01-02 15:04"),
			"Complete":   "false",
			"Issues":     orphan.Issue,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func buildAnalyticsDataset(analytics []timecalc.StaffTimeAnalytics) export.Dataset {
	headers := []string{"Staff ID", "Staff Name", "Total Shifts", "Complete Shifts", "Incomplete Shifts", "Days Worked", "Regular Hours", "Overtime Hours", "Total Hours", "Average Shift Hours", "Longest Shift Hours", "Shortest Shift Hours", "Total Breaks (min)", "Photo Compliance (%)", "Shifts With Issues"}
	rows := make([]map[string]string, 0, len(analytics))
	for _, row := range analytics {
		rows = append(rows, map[string]string{
			"Staff ID":             fmt.Sprintf("%d", row.StaffID),
			"Staff Name":           row.StaffName,
			"Total Shifts":         fmt.Sprintf("%d", row.TotalShifts),
			"Complete Shifts":      fmt.Sprintf("%d", row.CompleteShifts),
			"Incomplete Shifts":    fmt.Sprintf("%d", row.IncompleteShifts),
			"Days Worked":          fmt.Sprintf("%d", row.DaysWorked),
			"Regular Hours":        fmt.Sprintf("%.1f", row.RegularHours),
			"Overtime Hours":       fmt.Sprintf("%.1f", row.OvertimeHours),
			"Total Hours":          fmt.Sprintf("%.1f", row.TotalHours),
			"Average Shift Hours":  fmt.Sprintf("%.1f", row.AverageShiftHours),
			"Longest Shift Hours":  fmt.Sprintf("%.1f", row.LongestShiftHours),
			"Shortest Shift Hours": fmt.Sprintf("%.1f", row.ShortestShiftHours),
			"Total Breaks (min)":   fmt.Sprintf("%d", row.TotalBreaksMinutes),
			"Photo Compliance (%)": fmt.Sprintf("%.1f", row.PhotoComplianceRate),
			"Shifts With Issues":   fmt.Sprintf("%d", row.ShiftsWithIssues),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
