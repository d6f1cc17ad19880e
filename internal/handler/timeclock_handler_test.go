package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/service"
)

type entryStoreStub struct {
	entries []models.TimeEntry
	latest  *models.TimeEntry
}

func (s *entryStoreStub) List(ctx context.Context, filter models.TimeEntryFilter) ([]models.TimeEntry, int, error) {
	return s.entries, len(s.entries), nil
}

func (s *entryStoreStub) Create(ctx context.Context, entry *models.TimeEntry) error {
	entry.ID = "entry-1"
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *entryStoreStub) LatestForStaff(ctx context.Context, staffID int) (*models.TimeEntry, error) {
	if s.latest == nil {
		return nil, sql.ErrNoRows
	}
	return s.latest, nil
}

type rosterStub struct {
	staff []models.Staff
}

func (s *rosterStub) FindByID(ctx context.Context, id int) (*models.Staff, error) {
	for i := range s.staff {
		if s.staff[i].ID == id {
			return &s.staff[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *rosterStub) ListActive(ctx context.Context) ([]models.Staff, error) {
	return s.staff, nil
}

func newTimeClockHandler(t *testing.T) (*TimeClockHandler, *entryStoreStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &entryStoreStub{}
	roster := &rosterStub{staff: []models.Staff{{ID: 9, Name: "Nok", PINHash: string(hash), Active: true}}}
	svc := service.NewTimeClockService(store, roster, nil, nil, nil, nil, nil)
	return NewTimeClockHandler(svc, nil), store
}

func TestTimeClockHandlerPunch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newTimeClockHandler(t)

	c, w := newGinContext(http.MethodPost, "/time-clock/punch", []byte(`{"pin":"1234","photo_captured":true}`))
	handler.Punch(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.entries, 1)
	assert.Equal(t, models.ActionClockIn, store.entries[0].Action)

	var envelope struct {
		Data struct {
			Action  string `json:"action"`
			StaffID int    `json:"staff_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "clock_in", envelope.Data.Action)
	assert.Equal(t, 9, envelope.Data.StaffID)
}

func TestTimeClockHandlerPunchBadPIN(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTimeClockHandler(t)

	c, w := newGinContext(http.MethodPost, "/time-clock/punch", []byte(`{"pin":"0000"}`))
	handler.Punch(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimeClockHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newTimeClockHandler(t)
	store.latest = &models.TimeEntry{StaffID: 9, Action: models.ActionClockIn, Timestamp: time.Now()}

	c, w := newGinContext(http.MethodGet, "/time-clock/status/9", nil)
	c.Params = gin.Params{{Key: "staffId", Value: "9"}}
	handler.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			ClockedIn  bool   `json:"clocked_in"`
			NextAction string `json:"next_action"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.ClockedIn)
	assert.Equal(t, "clock_out", envelope.Data.NextAction)
}

func TestTimeClockHandlerStatusBadParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTimeClockHandler(t)

	c, w := newGinContext(http.MethodGet, "/time-clock/status/abc", nil)
	c.Params = gin.Params{{Key: "staffId", Value: "abc"}}
	handler.Status(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimeClockHandlerListEntriesDerivesDisplayFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newTimeClockHandler(t)
	// 17:30 UTC is 00:30 the next day in club time.
	store.entries = []models.TimeEntry{{
		ID:        "entry-1",
		StaffID:   9,
		StaffName: "Nok",
		Action:    models.ActionClockIn,
		Timestamp: time.Date(2024, 6, 1, 17, 30, 0, 0, time.UTC),
	}}

	c, w := newGinContext(http.MethodGet, "/time-clock/entries", nil)
	handler.ListEntries(c)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []struct {
			EntryID  string `json:"entry_id"`
			DateOnly string `json:"date_only"`
			TimeOnly string `json:"time_only"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "entry-1", envelope.Data[0].EntryID)
	assert.Equal(t, "2024-06-02", envelope.Data[0].DateOnly)
	assert.Equal(t, "00:30:00", envelope.Data[0].TimeOnly)
}

func TestTimeClockHandlerListEntriesRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTimeClockHandler(t)

	c, w := newGinContext(http.MethodGet, "/time-clock/entries?start_date=04-11-2024", nil)
	handler.ListEntries(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
