package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lengolf/timeclock-api/internal/dto"
	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/timecalc"
	appErrors "github.com/lengolf/timeclock-api/pkg/errors"
)

type rangeEntryStore interface {
	ListRange(ctx context.Context, start, end time.Time, staffID *int) ([]models.TimeEntry, error)
}

// ReportService computes shift and analytics reports over raw clock events.
// Results are cached per window; the calculator itself stays pure.
type ReportService struct {
	entries   rangeEntryStore
	cache     *CacheService
	policy    timecalc.Policy
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(entries rangeEntryStore, cache *CacheService, policy timecalc.Policy, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{entries: entries, cache: cache, policy: policy, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// ShiftReport pairs the window's clock events into work shifts. The second
// return value reports whether the payload came from cache.
func (s *ReportService) ShiftReport(ctx context.Context, query dto.ReportQuery) (*dto.ShiftReportResponse, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report window")
	}

	key := s.cacheKey("shifts", query)
	if s.cache.Enabled() {
		var cached dto.ShiftReportResponse
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	entries, err := s.loadWindow(ctx, query)
	if err != nil {
		return nil, false, err
	}

	result, err := timecalc.CalculateWorkShifts(entries, s.policy)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrBadEntryData.Code, appErrors.ErrBadEntryData.Status, "time entry data failed integrity checks")
	}

	resp := &dto.ShiftReportResponse{
		StartDate:       query.StartDate,
		EndDate:         query.EndDate,
		TotalEntries:    len(entries),
		Shifts:          result.Shifts,
		OrphanClockOuts: result.Orphans,
	}

	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache shift report", zap.String("key", key), zap.Error(err))
	}
	return resp, false, nil
}

// AnalyticsReport aggregates the window's shifts per staff member.
func (s *ReportService) AnalyticsReport(ctx context.Context, query dto.ReportQuery) (*dto.AnalyticsReportResponse, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report window")
	}

	key := s.cacheKey("analytics", query)
	if s.cache.Enabled() {
		var cached dto.AnalyticsReportResponse
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	entries, err := s.loadWindow(ctx, query)
	if err != nil {
		return nil, false, err
	}

	result, err := timecalc.CalculateWorkShifts(entries, s.policy)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrBadEntryData.Code, appErrors.ErrBadEntryData.Status, "time entry data failed integrity checks")
	}

	resp := &dto.AnalyticsReportResponse{
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		Staff:     timecalc.CalculateStaffAnalytics(result.Shifts, entries),
	}

	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache analytics report", zap.String("key", key), zap.Error(err))
	}
	return resp, false, nil
}

func (s *ReportService) loadWindow(ctx context.Context, query dto.ReportQuery) ([]models.TimeEntry, error) {
	start, end, err := parseReportWindow(query.StartDate, query.EndDate, s.policy.Location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	entries, err := s.entries.ListRange(ctx, start, end, query.StaffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time entries")
	}
	return entries, nil
}

func (s *ReportService) cacheKey(kind string, query dto.ReportQuery) string {
	staff := "all"
	if query.StaffID != nil {
		staff = fmt.Sprintf("%d", *query.StaffID)
	}
	return fmt.Sprintf("timeclock:report:%s:%s:%s:%s", kind, query.StartDate, query.EndDate, staff)
}

// parseReportWindow interprets the inclusive date window in the business
// timezone as a half-open instant range: start of the first day up to, but
// not including, the start of the day after the last day.
func parseReportWindow(startDate, endDate string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}
	start, err := time.ParseInLocation("2006-01-02", startDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q", startDate)
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q", endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date precedes start_date")
	}
	// Upper bound is the start of the day after end_date, exclusive, so
	// sub-second timestamps in the final second are not lost.
	return start, end.Add(24 * time.Hour), nil
}
