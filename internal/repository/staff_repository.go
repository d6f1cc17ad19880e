package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lengolf/timeclock-api/internal/models"
)

// StaffRepository manages persistence for the staff roster.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns staff matching filters along with total count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	base := "FROM staff WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	allowedSorts := map[string]string{
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, pin_hash, active, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, column, order, size, offset)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}

	return staff, total, nil
}

// FindByID fetches a staff member by numeric ID.
func (r *StaffRepository) FindByID(ctx context.Context, id int) (*models.Staff, error) {
	const query = `SELECT id, name, pin_hash, active, created_at, updated_at FROM staff WHERE id = $1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// ListActive returns every active staff member. PIN verification has to scan
// the active roster because the kiosk submits only the PIN.
func (r *StaffRepository) ListActive(ctx context.Context) ([]models.Staff, error) {
	const query = `SELECT id, name, pin_hash, active, created_at, updated_at FROM staff WHERE active = TRUE ORDER BY id`
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("list active staff: %w", err)
	}
	return staff, nil
}

// Create inserts a staff member and returns the generated numeric ID.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now
	const query = `INSERT INTO staff (name, pin_hash, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &staff.ID, query, staff.Name, staff.PINHash, staff.Active, staff.CreatedAt, staff.UpdatedAt); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update persists name, PIN hash and active flag changes.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET name = $2, pin_hash = $3, active = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, staff.ID, staff.Name, staff.PINHash, staff.Active, staff.UpdatedAt); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a staff member.
func (r *StaffRepository) Deactivate(ctx context.Context, id int) error {
	const query = `UPDATE staff SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate staff: %w", err)
	}
	return nil
}
