package model

import (
	"fmt"

	"github.com/google/uuid"
)

// StaffMember is a technician on the salon roster.
type StaffMember struct {
	Base
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	Email       string `db:"email" json:"email"`
	Phone       string `db:"phone" json:"phone,omitempty"`
	IsActive    bool   `db:"is_active" json:"is_active"`
	IsAvailable bool   `db:"is_available" json:"is_available"`
}

func (s *StaffMember) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// Bookable reports whether the member can take new appointments.
func (s *StaffMember) Bookable() bool {
	return s.IsActive && s.IsAvailable
}

// StaffWorkload is the derived busy-minutes of one staff member for a
// single day. It is ephemeral and must be recomputed when the date changes.
type StaffWorkload struct {
	StaffID uuid.UUID `json:"staff_id"`
	Minutes int       `json:"minutes"`
}

type CreateStaffRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"max=20"`
}

type UpdateStaffRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	IsActive    *bool   `json:"is_active"`
	IsAvailable *bool   `json:"is_available"`
}
