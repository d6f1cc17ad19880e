package dto

// CreateStaffRequest is the admin payload for adding a roster member.
type CreateStaffRequest struct {
	Name string `json:"staff_name" validate:"required,min=2,max=100"`
	PIN  string `json:"pin" validate:"required,numeric,min=4,max=8"`
}

// UpdateStaffRequest carries partial roster updates. A nil field is left
// untouched; a new PIN is re-hashed before storage.
type UpdateStaffRequest struct {
	Name   *string `json:"staff_name,omitempty" validate:"omitempty,min=2,max=100"`
	PIN    *string `json:"pin,omitempty" validate:"omitempty,numeric,min=4,max=8"`
	Active *bool   `json:"active,omitempty"`
}
