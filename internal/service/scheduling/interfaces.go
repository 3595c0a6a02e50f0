package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
)

// BookingDirectory lists existing bookings for overlap and workload
// computations. Implementations must exclude cancelled bookings.
type BookingDirectory interface {
	ListForStaffOnDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*model.Booking, error)
	ListForDate(ctx context.Context, date time.Time) ([]*model.Booking, error)
}

// ServiceLineSpec is one line of a batched availability query.
type ServiceLineSpec struct {
	ServiceID uuid.UUID `json:"service_id"`
	StaffID   uuid.UUID `json:"staff_id"`
	Duration  int       `json:"duration"` // minutes, add-ons included
	Buffer    int       `json:"buffer"`   // minutes
}

// AvailabilityQuery carries everything the authoritative slot computation
// needs in a single round trip.
type AvailabilityQuery struct {
	Date                  time.Time         `json:"date"`
	Lines                 []ServiceLineSpec `json:"lines"`
	RemovalMinutes        int               `json:"removal_minutes"`
	Simultaneous          bool              `json:"simultaneous"`
	TimezoneOffsetMinutes int               `json:"timezone_offset_minutes"`
}

// AvailabilityClient is the authoritative slot computation. The resolver
// shapes the request and interprets the response; it never re-derives
// conflicts itself.
type AvailabilityClient interface {
	QueryAvailability(ctx context.Context, q AvailabilityQuery) ([]model.TimeSlot, error)
}

// StaffAssigner resolves an "any" staff assignment at the moment a time
// slot is picked.
type StaffAssigner interface {
	AssignOptimal(ctx context.Context, date, start time.Time, duration int) (*model.StaffMember, error)
}

// CompatibilityChecker answers which categories/add-ons conflict with a
// given selection, used to filter candidate lines before scheduling.
type CompatibilityChecker interface {
	IncompatibleCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error)
	IncompatibleAddOns(ctx context.Context, addOnIDs []uuid.UUID) ([]uuid.UUID, error)
}

// StaffRoster lists the staff eligible for auto-assignment.
type StaffRoster interface {
	ListBookable(ctx context.Context) ([]*model.StaffMember, error)
}
