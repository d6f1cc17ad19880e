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

func newTimeEntryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func timeEntryRows(ts time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "staff_id", "staff_name", "action", "timestamp", "photo_captured", "camera_error", "created_at"}).
		AddRow("e1", 9, "Nok", "clock_in", ts, true, nil, ts)
}

func TestTimeEntryRepositoryList(t *testing.T) {
	db, mock, cleanup := newTimeEntryMock(t)
	defer cleanup()
	repo := NewTimeEntryRepository(db)

	staffID := 9
	ts := time.Date(2024, 11, 4, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, staff_id, staff_name, action, timestamp, photo_captured, camera_error, created_at FROM time_entries WHERE 1=1 AND staff_id = $1 ORDER BY timestamp DESC LIMIT 100 OFFSET 0")).
		WithArgs(staffID).
		WillReturnRows(timeEntryRows(ts))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM time_entries WHERE 1=1 AND staff_id = $1")).
		WithArgs(staffID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, total, err := repo.List(context.Background(), models.TimeEntryFilter{StaffID: &staffID})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.ActionClockIn, entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEntryRepositoryListRange(t *testing.T) {
	db, mock, cleanup := newTimeEntryMock(t)
	defer cleanup()
	repo := NewTimeEntryRepository(db)

	start := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, staff_id, staff_name, action, timestamp, photo_captured, camera_error, created_at FROM time_entries WHERE timestamp >= $1 AND timestamp < $2 ORDER BY timestamp ASC")).
		WithArgs(start, end).
		WillReturnRows(timeEntryRows(start.Add(9 * time.Hour)))

	entries, err := repo.ListRange(context.Background(), start, end, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEntryRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTimeEntryMock(t)
	defer cleanup()
	repo := NewTimeEntryRepository(db)

	mock.ExpectExec("INSERT INTO time_entries").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.TimeEntry{StaffID: 9, StaffName: "Nok", Action: models.ActionClockIn, Timestamp: time.Now(), PhotoCaptured: true}
	err := repo.Create(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEntryRepositoryLatestForStaff(t *testing.T) {
	db, mock, cleanup := newTimeEntryMock(t)
	defer cleanup()
	repo := NewTimeEntryRepository(db)

	ts := time.Date(2024, 11, 4, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, staff_id, staff_name, action, timestamp, photo_captured, camera_error, created_at FROM time_entries WHERE staff_id = $1 ORDER BY timestamp DESC LIMIT 1")).
		WithArgs(9).
		WillReturnRows(timeEntryRows(ts))

	entry, err := repo.LatestForStaff(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 9, entry.StaffID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
