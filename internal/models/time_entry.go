package models

import "time"

// ClockAction enumerates the physical actions recorded by the time clock.
type ClockAction string

const (
	ActionClockIn  ClockAction = "clock_in"
	ActionClockOut ClockAction = "clock_out"
)

// Valid returns true when the action is a supported value.
func (a ClockAction) Valid() bool {
	return a == ActionClockIn || a == ActionClockOut
}

// Opposite returns the action a staff member should perform next.
func (a ClockAction) Opposite() ClockAction {
	if a == ActionClockIn {
		return ActionClockOut
	}
	return ActionClockIn
}

// TimeEntry is one raw clock event as recorded by a kiosk. Timestamp is the
// authoritative instant; display date/time fields are derived at the API
// boundary in the business timezone.
type TimeEntry struct {
	ID            string      `db:"id" json:"entry_id"`
	StaffID       int         `db:"staff_id" json:"staff_id"`
	StaffName     string      `db:"staff_name" json:"staff_name"`
	Action        ClockAction `db:"action" json:"action"`
	Timestamp     time.Time   `db:"timestamp" json:"timestamp"`
	PhotoCaptured bool        `db:"photo_captured" json:"photo_captured"`
	CameraError   *string     `db:"camera_error" json:"camera_error,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// TimeEntryFilter scopes entry listing and report queries. EndDate is an
// exclusive upper bound.
type TimeEntryFilter struct {
	StaffID   *int
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
	SortOrder string
}
