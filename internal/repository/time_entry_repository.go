package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lengolf/timeclock-api/internal/models"
)

// TimeEntryRepository handles persistence for raw clock events.
type TimeEntryRepository struct {
	db *sqlx.DB
}

// NewTimeEntryRepository constructs the repository.
func NewTimeEntryRepository(db *sqlx.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

const timeEntryColumns = "id, staff_id, staff_name, action, timestamp, photo_captured, camera_error, created_at"

// List returns entries matching the provided filter with pagination.
func (r *TimeEntryRepository) List(ctx context.Context, filter models.TimeEntryFilter) ([]models.TimeEntry, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.StaffID != nil {
		where = append(where, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, *filter.StaffID)
	}
	if filter.StartDate != nil {
		where = append(where, fmt.Sprintf("timestamp >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		where = append(where, fmt.Sprintf("timestamp < $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	whereClause := strings.Join(where, " AND ")

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM time_entries WHERE %s ORDER BY timestamp %s LIMIT %d OFFSET %d`,
		timeEntryColumns, whereClause, order, size, offset)

	var rows []models.TimeEntry
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list time entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM time_entries WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count time entries: %w", err)
	}
	return rows, total, nil
}

// ListRange returns every entry in the half-open window [start, end) without
// pagination, ordered by timestamp ascending. Report calculations need the
// full window; the exclusive upper bound keeps sub-second timestamps at the
// edge from falling out.
func (r *TimeEntryRepository) ListRange(ctx context.Context, start, end time.Time, staffID *int) ([]models.TimeEntry, error) {
	where := []string{"timestamp >= $1", "timestamp < $2"}
	args := []interface{}{start, end}
	if staffID != nil {
		where = append(where, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, *staffID)
	}
	query := fmt.Sprintf(`SELECT %s FROM time_entries WHERE %s ORDER BY timestamp ASC`,
		timeEntryColumns, strings.Join(where, " AND "))

	var rows []models.TimeEntry
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list time entries for range: %w", err)
	}
	return rows, nil
}

// Create inserts a new clock event.
func (r *TimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO time_entries (id, staff_id, staff_name, action, timestamp, photo_captured, camera_error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.StaffID, entry.StaffName, entry.Action, entry.Timestamp,
		entry.PhotoCaptured, entry.CameraError, entry.CreatedAt); err != nil {
		return fmt.Errorf("create time entry: %w", err)
	}
	return nil
}

// LatestForStaff returns the staff member's most recent entry, or sql.ErrNoRows.
func (r *TimeEntryRepository) LatestForStaff(ctx context.Context, staffID int) (*models.TimeEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_entries WHERE staff_id = $1 ORDER BY timestamp DESC LIMIT 1`, timeEntryColumns)
	var entry models.TimeEntry
	if err := r.db.GetContext(ctx, &entry, query, staffID); err != nil {
		return nil, err
	}
	return &entry, nil
}
