package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lengolf/timeclock-api/internal/models"
)

func newStaffMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func staffRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "pin_hash", "active", "created_at", "updated_at"}).
		AddRow(9, "Nok", "$2a$10$hash", true, now, now)
}

func TestStaffRepositoryList(t *testing.T) {
	db, mock, cleanup := newStaffMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, pin_hash, active, created_at, updated_at FROM staff WHERE 1=1 AND active = $1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs(active).
		WillReturnRows(staffRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM staff WHERE 1=1 AND active = $1")).
		WithArgs(active).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	staff, total, err := repo.List(context.Background(), models.StaffFilter{Active: &active})
	require.NoError(t, err)
	assert.Len(t, staff, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newStaffMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, pin_hash, active, created_at, updated_at FROM staff WHERE active = TRUE ORDER BY id")).
		WillReturnRows(staffRows())

	staff, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Nok", staff[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStaffMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery("INSERT INTO staff").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	staff := &models.Staff{Name: "Nok", PINHash: "$2a$10$hash", Active: true}
	err := repo.Create(context.Background(), staff)
	require.NoError(t, err)
	assert.Equal(t, 42, staff.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newStaffMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectExec("UPDATE staff SET active = FALSE").
		WithArgs(9, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}
