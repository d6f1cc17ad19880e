package dto

import (
	"time"

	"github.com/lengolf/timeclock-api/internal/models"
)

// PunchRequest is the kiosk payload for POST /time-clock/punch. The kiosk
// submits only the PIN; the server resolves the staff member and decides
// whether this punch opens or closes a shift.
type PunchRequest struct {
	PIN           string  `json:"pin" validate:"required,numeric,min=4,max=8"`
	PhotoCaptured bool    `json:"photo_captured"`
	CameraError   *string `json:"camera_error,omitempty"`
	DeviceID      *string `json:"device_id,omitempty"`
}

// PunchResponse confirms a recorded clock event.
type PunchResponse struct {
	EntryID   string             `json:"entry_id"`
	StaffID   int                `json:"staff_id"`
	StaffName string             `json:"staff_name"`
	Action    models.ClockAction `json:"action"`
	Timestamp time.Time          `json:"timestamp"`
	Message   string             `json:"message"`
}

// TimeEntryResponse is a raw clock event as served to the reporting UI. The
// timestamp stays the authoritative instant; DateOnly and TimeOnly are
// derived display fields in the business timezone.
type TimeEntryResponse struct {
	EntryID       string             `json:"entry_id"`
	StaffID       int                `json:"staff_id"`
	StaffName     string             `json:"staff_name"`
	Action        models.ClockAction `json:"action"`
	Timestamp     time.Time          `json:"timestamp"`
	DateOnly      string             `json:"date_only"`
	TimeOnly      string             `json:"time_only"`
	PhotoCaptured bool               `json:"photo_captured"`
	CameraError   *string            `json:"camera_error,omitempty"`
}

// NewTimeEntryResponse derives the display fields from the entry timestamp in
// the given business timezone.
func NewTimeEntryResponse(entry models.TimeEntry, loc *time.Location) TimeEntryResponse {
	if loc == nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}
	local := entry.Timestamp.In(loc)
	return TimeEntryResponse{
		EntryID:       entry.ID,
		StaffID:       entry.StaffID,
		StaffName:     entry.StaffName,
		Action:        entry.Action,
		Timestamp:     entry.Timestamp,
		DateOnly:      local.Format("2006-01-02"),
		TimeOnly:      local.Format("15:04:05"),
		PhotoCaptured: entry.PhotoCaptured,
		CameraError:   entry.CameraError,
	}
}

// StatusResponse reports whether a staff member currently has an open shift.
type StatusResponse struct {
	StaffID      int                 `json:"staff_id"`
	StaffName    string              `json:"staff_name"`
	ClockedIn    bool                `json:"clocked_in"`
	NextAction   models.ClockAction  `json:"next_action"`
	LastAction   *models.ClockAction `json:"last_action,omitempty"`
	LastActionAt *time.Time          `json:"last_action_at,omitempty"`
}
