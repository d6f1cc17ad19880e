package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lengolf/timeclock-api/internal/dto"
	"github.com/lengolf/timeclock-api/internal/models"
	appErrors "github.com/lengolf/timeclock-api/pkg/errors"
)

type mockStaffStore struct {
	staff  []models.Staff
	nextID int
}

func (m *mockStaffStore) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	return m.staff, len(m.staff), nil
}

func (m *mockStaffStore) FindByID(ctx context.Context, id int) (*models.Staff, error) {
	for i := range m.staff {
		if m.staff[i].ID == id {
			return &m.staff[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStaffStore) ListActive(ctx context.Context) ([]models.Staff, error) {
	active := make([]models.Staff, 0, len(m.staff))
	for _, s := range m.staff {
		if s.Active {
			active = append(active, s)
		}
	}
	return active, nil
}

func (m *mockStaffStore) Create(ctx context.Context, staff *models.Staff) error {
	m.nextID++
	staff.ID = m.nextID
	m.staff = append(m.staff, *staff)
	return nil
}

func (m *mockStaffStore) Update(ctx context.Context, staff *models.Staff) error {
	for i := range m.staff {
		if m.staff[i].ID == staff.ID {
			m.staff[i] = *staff
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockStaffStore) Deactivate(ctx context.Context, id int) error {
	for i := range m.staff {
		if m.staff[i].ID == id {
			m.staff[i].Active = false
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestStaffServiceCreateHashesPIN(t *testing.T) {
	store := &mockStaffStore{}
	svc := NewStaffService(store, nil, nil)

	staff, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Nok", PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, 1, staff.ID)
	assert.True(t, staff.Active)
	assert.NotEqual(t, "1234", staff.PINHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(staff.PINHash), []byte("1234")))
}

func TestStaffServiceCreateRejectsDuplicatePIN(t *testing.T) {
	store := &mockStaffStore{}
	svc := NewStaffService(store, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Nok", PIN: "1234"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Lek", PIN: "1234"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestStaffServiceCreateRejectsInvalidPayload(t *testing.T) {
	svc := NewStaffService(&mockStaffStore{}, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Nok", PIN: "abcd"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestStaffServiceUpdateChangesPIN(t *testing.T) {
	store := &mockStaffStore{}
	svc := NewStaffService(store, nil, nil)

	created, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Nok", PIN: "1234"})
	require.NoError(t, err)

	newPIN := "5678"
	updated, err := svc.Update(context.Background(), created.ID, dto.UpdateStaffRequest{PIN: &newPIN})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PINHash), []byte("5678")))
}

func TestStaffServiceDeactivate(t *testing.T) {
	store := &mockStaffStore{}
	svc := NewStaffService(store, nil, nil)

	created, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Nok", PIN: "1234"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID))
	stored, err := store.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestStaffServiceDeactivateUnknown(t *testing.T) {
	svc := NewStaffService(&mockStaffStore{}, nil, nil)

	err := svc.Deactivate(context.Background(), 404)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
