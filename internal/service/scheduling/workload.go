package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
)

// ComputeWorkloads derives per-staff busy minutes for one day. Every
// bookable staff member appears in the result, idle members included, so
// auto-assignment can pick them. Cancelled bookings and bookings on other
// dates contribute nothing. Results for a different date are stale and
// must be recomputed, never merged.
func ComputeWorkloads(bookings []*model.Booking, staff []*model.StaffMember, date time.Time) []model.StaffWorkload {
	order := make([]uuid.UUID, 0, len(staff))
	minutes := make(map[uuid.UUID]int, len(staff))
	for _, s := range staff {
		if !s.Bookable() {
			continue
		}
		if _, ok := minutes[s.ID]; !ok {
			order = append(order, s.ID)
			minutes[s.ID] = 0
		}
	}

	for _, b := range bookings {
		if !b.Active() || !sameDay(b.AppointmentDate, date) {
			continue
		}
		if _, ok := minutes[b.StaffID]; !ok {
			continue
		}
		minutes[b.StaffID] += int(b.EndTime.Sub(b.StartTime).Minutes())
	}

	workloads := make([]model.StaffWorkload, 0, len(order))
	for _, id := range order {
		workloads = append(workloads, model.StaffWorkload{StaffID: id, Minutes: minutes[id]})
	}
	return workloads
}

// PickLeastLoaded returns the staff member with the minimum workload.
// Ties resolve to the first-encountered entry, which follows roster
// order. With no workload data it falls back to the first bookable
// member of the roster.
func PickLeastLoaded(workloads []model.StaffWorkload, roster []*model.StaffMember) (uuid.UUID, error) {
	if len(workloads) > 0 {
		best := workloads[0]
		for _, w := range workloads[1:] {
			if w.Minutes < best.Minutes {
				best = w
			}
		}
		return best.StaffID, nil
	}

	for _, s := range roster {
		if s.Bookable() {
			return s.ID, nil
		}
	}
	return uuid.Nil, ErrNoStaffAvailable
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
