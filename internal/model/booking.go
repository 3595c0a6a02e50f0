package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking is one persisted appointment record. A multi-service plan emits
// one Booking per service line.
type Booking struct {
	Base
	ServiceID       uuid.UUID     `db:"service_id" json:"service_id"`
	CustomerID      uuid.UUID     `db:"customer_id" json:"customer_id"`
	StaffID         uuid.UUID     `db:"staff_id" json:"staff_id"`
	AppointmentDate time.Time     `db:"appointment_date" json:"appointment_date"`
	StartTime       time.Time     `db:"start_time" json:"start_time"`
	EndTime         time.Time     `db:"end_time" json:"end_time"`
	Duration        int           `db:"duration" json:"duration"` // minutes, buffer included
	AddOnIDs        pq.StringArray `db:"addon_ids" json:"addon_ids,omitempty"`
	Status          BookingStatus `db:"status" json:"status"`
	TotalPrice      float64       `db:"total_price" json:"total_price"`
	Notes           string        `db:"notes" json:"notes,omitempty"`
	FromWeb         bool          `db:"from_web" json:"from_web"`
}

// Active reports whether the booking still occupies its staff member's
// time. Cancelled bookings never count toward overlap or workload.
func (b *Booking) Active() bool {
	return b.Status != BookingStatusCancelled
}

// BookingDraft is one planned record of a booking plan, held in session
// state until submission converts it into a Booking.
type BookingDraft struct {
	ID              uuid.UUID   `json:"id"`
	ServiceID       uuid.UUID   `json:"service_id"`
	CustomerID      uuid.UUID   `json:"customer_id"`
	StaffID         uuid.UUID   `json:"staff_id"`
	AppointmentDate time.Time   `json:"appointment_date"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	Duration        int         `json:"duration"`
	AddOnIDs        []uuid.UUID `json:"addon_ids,omitempty"`
	Status          BookingStatus `json:"status"`
	TotalPrice      float64     `json:"total_price"`
	Notes           string      `json:"notes,omitempty"`
	FromWeb         bool        `json:"from_web"`
}

// TimeSlot is a candidate appointment start returned by the availability
// resolver.
type TimeSlot struct {
	Start     time.Time `json:"start"`
	Available bool      `json:"available"`
}

type BookingFilters struct {
	StaffID    uuid.UUID
	CustomerID uuid.UUID
	ServiceID  uuid.UUID
	Status     BookingStatus
	StartDate  time.Time
	EndDate    time.Time
}

type CreateBookingRequest struct {
	ServiceID       string   `json:"service_id" binding:"required,uuid"`
	CustomerID      string   `json:"customer_id" binding:"required,uuid"`
	StaffID         string   `json:"staff_id" binding:"required,uuid"`
	AppointmentDate string   `json:"appointment_date" binding:"required"`
	StartTime       string   `json:"start_time" binding:"required"`
	AddOnIDs        []string `json:"addon_ids" binding:"omitempty,dive,uuid"`
	Notes           string   `json:"notes" binding:"max=1000"`
}

type UpdateBookingRequest struct {
	StartTime *time.Time     `json:"start_time"`
	EndTime   *time.Time     `json:"end_time"`
	StaffID   *string        `json:"staff_id"`
	Status    *BookingStatus `json:"status"`
	Notes     *string        `json:"notes"`
}
