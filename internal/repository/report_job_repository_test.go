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

func newReportJobMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReportJobRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newReportJobMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	mock.ExpectExec("INSERT INTO report_jobs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ReportJob{
		Type:      models.ReportTypeShifts,
		Params:    models.ReportJobParams{StartDate: "2024-11-01", EndDate: "2024-11-30", Format: models.ReportFormatCSV},
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newReportJobMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	status := models.ReportStatusFinished
	progress := 100
	url := "/api/exports/download?token=abc"
	finished := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, progress = $2, result_url = $3, finished_at = $4 WHERE id = $5")).
		WithArgs(status, progress, url, finished, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{
		Status:     &status,
		Progress:   &progress,
		ResultURL:  &url,
		FinishedAt: &finished,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportJobRepositoryUpdateNoFields(t *testing.T) {
	db, mock, cleanup := newReportJobMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateReportJobParams{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportJobRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newReportJobMock(t)
	defer cleanup()
	repo := NewReportJobRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "type", "params", "status", "progress", "result_url", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", "shifts", []byte(`{"start_date":"2024-11-01","end_date":"2024-11-30","format":"csv"}`), "QUEUED", 0, nil, "admin-1", now, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, params, status, progress, result_url, created_by, created_at, finished_at, error_message FROM report_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.ReportFormatCSV, jobs[0].Params.Format)
	assert.NoError(t, mock.ExpectationsWereMet())
}
