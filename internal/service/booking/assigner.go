package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
	"github.com/salonhq/admin-api/internal/service/scheduling"
)

// Assigner resolves "any staff" lines to a concrete member at slot
// selection time: least busy on the chosen date, roster order breaking
// ties, with the candidate's calendar checked for the requested
// interval before committing.
type Assigner struct {
	bookings repository.BookingRepository
	staff    repository.StaffRepository
}

var _ scheduling.StaffAssigner = (*Assigner)(nil)

func NewAssigner(bookings repository.BookingRepository, staff repository.StaffRepository) *Assigner {
	return &Assigner{bookings: bookings, staff: staff}
}

func (a *Assigner) AssignOptimal(ctx context.Context, date, start time.Time, duration int) (*model.StaffMember, error) {
	roster, err := a.staff.ListBookable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	if len(roster) == 0 {
		return nil, scheduling.ErrNoStaffAvailable
	}

	dayBookings, err := a.bookings.ListForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	workloads := scheduling.ComputeWorkloads(dayBookings, roster, date)
	end := start.Add(time.Duration(duration) * time.Minute)

	// Walk candidates in workload order, skipping any whose calendar
	// conflicts with the requested interval.
	remaining := workloads
	for len(remaining) > 0 {
		staffID, err := scheduling.PickLeastLoaded(remaining, roster)
		if err != nil {
			return nil, err
		}

		if !a.hasConflict(dayBookings, staffID, start, end) {
			for _, s := range roster {
				if s.ID == staffID {
					return s, nil
				}
			}
		}

		next := remaining[:0:0]
		for _, w := range remaining {
			if w.StaffID != staffID {
				next = append(next, w)
			}
		}
		remaining = next
	}

	return nil, scheduling.ErrNoStaffAvailable
}

func (a *Assigner) hasConflict(bookings []*model.Booking, staffID uuid.UUID, start, end time.Time) bool {
	for _, b := range bookings {
		if b.StaffID != staffID || !b.Active() {
			continue
		}
		if scheduling.Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}
