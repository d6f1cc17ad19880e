package models

import "time"

// Staff represents an employee on the club roster. StaffID is the numeric
// identifier punched into time-clock kiosks and printed on payroll exports.
type Staff struct {
	ID        int       `db:"id" json:"staff_id"`
	Name      string    `db:"name" json:"staff_name"`
	PINHash   string    `db:"pin_hash" json:"-"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures filtering criteria for listing staff.
type StaffFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
