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

// BusinessHours bounds the candidate slot grid for one day.
type BusinessHours struct {
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
	StepMinutes int
	// MinNoticeMinutes hides slots starting sooner than this from now.
	MinNoticeMinutes int
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		OpenHour:         9,
		CloseHour:        19,
		StepMinutes:      15,
		MinNoticeMinutes: 30,
	}
}

// AvailabilityService is the authoritative slot computation behind the
// resolver. It generates a candidate grid over business hours and tests
// each start against the assigned staff members' existing bookings,
// laying lines out sequentially or all at the base start for VIP Combo.
type AvailabilityService struct {
	repo  repository.BookingRepository
	hours BusinessHours
}

var _ scheduling.AvailabilityClient = (*AvailabilityService)(nil)

func NewAvailabilityService(repo repository.BookingRepository, hours BusinessHours) *AvailabilityService {
	if hours.StepMinutes <= 0 {
		hours.StepMinutes = 15
	}
	return &AvailabilityService{repo: repo, hours: hours}
}

func (s *AvailabilityService) QueryAvailability(ctx context.Context, q scheduling.AvailabilityQuery) ([]model.TimeSlot, error) {
	if len(q.Lines) == 0 {
		return nil, fmt.Errorf("availability query has no service lines")
	}

	loc := time.FixedZone("client", q.TimezoneOffsetMinutes*60)
	y, m, d := q.Date.In(loc).Date()
	open := time.Date(y, m, d, s.hours.OpenHour, s.hours.OpenMinute, 0, 0, loc)
	close := time.Date(y, m, d, s.hours.CloseHour, s.hours.CloseMinute, 0, 0, loc)

	existing, err := s.loadBookings(ctx, q)
	if err != nil {
		return nil, err
	}

	notBefore := time.Now().Add(time.Duration(s.hours.MinNoticeMinutes) * time.Minute)

	slots := make([]model.TimeSlot, 0, 64)
	step := time.Duration(s.hours.StepMinutes) * time.Minute
	for start := open; start.Before(close); start = start.Add(step) {
		available := !start.Before(notBefore) && s.planFits(q, start, close, existing)
		slots = append(slots, model.TimeSlot{Start: start, Available: available})
	}

	return slots, nil
}

// loadBookings fetches each distinct staff member's bookings for the day
// once, keyed by staff ID.
func (s *AvailabilityService) loadBookings(ctx context.Context, q scheduling.AvailabilityQuery) (map[uuid.UUID][]*model.Booking, error) {
	existing := make(map[uuid.UUID][]*model.Booking, len(q.Lines))
	for _, line := range q.Lines {
		if _, ok := existing[line.StaffID]; ok {
			continue
		}
		bookings, err := s.repo.ListForStaffOnDate(ctx, line.StaffID, q.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to list bookings for staff %s: %w", line.StaffID, err)
		}
		existing[line.StaffID] = bookings
	}
	return existing, nil
}

// planFits reports whether every line of the plan, laid out from base,
// stays inside business hours and clear of the staff member's bookings.
func (s *AvailabilityService) planFits(q scheduling.AvailabilityQuery, base, close time.Time, existing map[uuid.UUID][]*model.Booking) bool {
	cursor := base
	for i, line := range q.Lines {
		duration := line.Duration
		if i == 0 {
			duration += q.RemovalMinutes
		}
		duration += line.Buffer

		start := cursor
		if q.Simultaneous {
			start = base
		}
		end := start.Add(time.Duration(duration) * time.Minute)

		if end.After(close) {
			return false
		}

		for _, b := range existing[line.StaffID] {
			if !b.Active() {
				continue
			}
			if scheduling.Overlaps(start, end, b.StartTime, b.EndTime) {
				return false
			}
		}

		if !q.Simultaneous {
			cursor = end
		}
	}
	return true
}
