package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lengolf/timeclock-api/internal/dto"
	"github.com/lengolf/timeclock-api/internal/models"
	appErrors "github.com/lengolf/timeclock-api/pkg/errors"
)

type timeEntryStore interface {
	List(ctx context.Context, filter models.TimeEntryFilter) ([]models.TimeEntry, int, error)
	Create(ctx context.Context, entry *models.TimeEntry) error
	LatestForStaff(ctx context.Context, staffID int) (*models.TimeEntry, error)
}

type staffRoster interface {
	FindByID(ctx context.Context, id int) (*models.Staff, error)
	ListActive(ctx context.Context) ([]models.Staff, error)
}

// TimeClockService records kiosk punches and serves raw entry listings.
type TimeClockService struct {
	entries   timeEntryStore
	staff     staffRoster
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewTimeClockService constructs a TimeClockService.
func NewTimeClockService(entries timeEntryStore, staff staffRoster, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, location *time.Location) *TimeClockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if location == nil {
		location = time.FixedZone("ICT", 7*60*60)
	}
	return &TimeClockService{
		entries:   entries,
		staff:     staff,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		location:  location,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Punch records a clock event for the staff member matching the submitted PIN.
// The server decides the action: the opposite of the staff's latest entry, or
// clock_in when no entries exist yet.
func (s *TimeClockService) Punch(ctx context.Context, req dto.PunchRequest) (*dto.PunchResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid punch payload")
	}

	staff, err := s.resolvePIN(ctx, req.PIN)
	if err != nil {
		return nil, err
	}

	action := models.ActionClockIn
	latest, err := s.entries.LatestForStaff(ctx, staff.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest entry")
	}
	if latest != nil {
		action = latest.Action.Opposite()
	}

	entry := &models.TimeEntry{
		StaffID:       staff.ID,
		StaffName:     staff.Name,
		Action:        action,
		Timestamp:     s.now(),
		PhotoCaptured: req.PhotoCaptured,
		CameraError:   req.CameraError,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record punch")
	}

	if s.metrics != nil {
		s.metrics.RecordPunch(action, req.PhotoCaptured)
	}
	if s.cache != nil {
		// Cached report windows containing this punch are now stale.
		if err := s.cache.Invalidate(ctx, "timeclock:report:*"); err != nil {
			s.logger.Warn("report cache invalidation failed", zap.Error(err))
		}
	}

	s.logger.Info("punch recorded",
		zap.Int("staff_id", staff.ID),
		zap.String("action", string(action)),
		zap.Bool("photo_captured", req.PhotoCaptured))

	message := fmt.Sprintf("%s clocked in", staff.Name)
	if action == models.ActionClockOut {
		message = fmt.Sprintf("%s clocked out", staff.Name)
	}

	return &dto.PunchResponse{
		EntryID:   entry.ID,
		StaffID:   staff.ID,
		StaffName: staff.Name,
		Action:    action,
		Timestamp: entry.Timestamp,
		Message:   message,
	}, nil
}

// ListEntries returns raw clock events for the admin UI.
func (s *TimeClockService) ListEntries(ctx context.Context, filter models.TimeEntryFilter) ([]models.TimeEntry, *models.Pagination, error) {
	entries, total, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time entries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Status reports whether the staff member currently has an open shift.
func (s *TimeClockService) Status(ctx context.Context, staffID int) (*dto.StatusResponse, error) {
	staff, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}

	resp := &dto.StatusResponse{
		StaffID:    staff.ID,
		StaffName:  staff.Name,
		NextAction: models.ActionClockIn,
	}

	latest, err := s.entries.LatestForStaff(ctx, staff.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return resp, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest entry")
	}

	resp.LastAction = &latest.Action
	resp.LastActionAt = &latest.Timestamp
	resp.ClockedIn = latest.Action == models.ActionClockIn
	resp.NextAction = latest.Action.Opposite()
	return resp, nil
}

// resolvePIN matches the submitted PIN against the active roster. Kiosks
// submit only the PIN, so every active hash is checked.
func (s *TimeClockService) resolvePIN(ctx context.Context, pin string) (*models.Staff, error) {
	roster, err := s.staff.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff roster")
	}
	for i := range roster {
		if bcrypt.CompareHashAndPassword([]byte(roster[i].PINHash), []byte(pin)) == nil {
			return &roster[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrInvalidPIN, "staff PIN not recognised")
}
