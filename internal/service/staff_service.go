package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lengolf/timeclock-api/internal/dto"
	"github.com/lengolf/timeclock-api/internal/models"
	appErrors "github.com/lengolf/timeclock-api/pkg/errors"
)

type staffStore interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	FindByID(ctx context.Context, id int) (*models.Staff, error)
	ListActive(ctx context.Context) ([]models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) error
	Deactivate(ctx context.Context, id int) error
}

// StaffService manages the club roster.
type StaffService struct {
	repo      staffStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffStore, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// List returns roster members matching the filter.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error) {
	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return staff, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one roster member.
func (s *StaffService) Get(ctx context.Context, id int) (*models.Staff, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return staff, nil
}

// Create adds a roster member with a hashed PIN. The PIN must be unique
// across active staff because kiosk punches identify staff by PIN alone.
func (s *StaffService) Create(ctx context.Context, req dto.CreateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	if err := s.ensurePINUnused(ctx, req.PIN, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash PIN")
	}

	staff := &models.Staff{Name: req.Name, PINHash: string(hash), Active: true}
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
	}
	s.logger.Info("staff member created", zap.Int("staff_id", staff.ID))
	return staff, nil
}

// Update applies partial changes to a roster member.
func (s *StaffService) Update(ctx context.Context, id int, req dto.UpdateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	staff, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Active != nil {
		staff.Active = *req.Active
	}
	if req.PIN != nil {
		if err := s.ensurePINUnused(ctx, *req.PIN, id); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.PIN), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash PIN")
		}
		staff.PINHash = string(hash)
	}

	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff member")
	}
	return staff, nil
}

// Deactivate soft-deletes a roster member so historical shifts stay intact.
func (s *StaffService) Deactivate(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate staff member")
	}
	s.logger.Info("staff member deactivated", zap.Int("staff_id", id))
	return nil
}

func (s *StaffService) ensurePINUnused(ctx context.Context, pin string, excludeID int) error {
	roster, err := s.repo.ListActive(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff roster")
	}
	for i := range roster {
		if roster[i].ID == excludeID {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(roster[i].PINHash), []byte(pin)) == nil {
			return appErrors.Clone(appErrors.ErrConflict, "PIN already in use by another staff member")
		}
	}
	return nil
}
