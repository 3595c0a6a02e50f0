package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
)

// PlanInput is a verified slot plus the session selection it was
// verified for.
type PlanInput struct {
	CustomerID    uuid.UUID
	Date          time.Time
	Start         time.Time
	Lines         []model.SelectedServiceLine
	RemovalAddOns []model.AddOn
	RemovalIDs    map[uuid.UUID]struct{}
	Simultaneous  bool
	Notes         string
}

// BuildPlan lays out one BookingDraft per service line. Simultaneous
// (VIP Combo) drafts all share the base start time; sequential drafts
// chain end-to-end, each end already including the line's buffer.
//
// Price allocation: every line but the last carries its own line price,
// the last line absorbs the aggregate total. Downstream reporting sums
// draft prices against the quoted total, so this rule must hold exactly.
func BuildPlan(in PlanInput) ([]model.BookingDraft, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyPlan
	}
	for _, line := range in.Lines {
		if !line.Staff.IsSpecific() {
			return nil, ErrStaffUnassigned
		}
	}

	totals := ComputeTotals(in.Lines, in.RemovalAddOns, in.RemovalIDs)
	n := len(in.Lines)

	drafts := make([]model.BookingDraft, 0, n)
	cursor := in.Start
	for i, line := range in.Lines {
		duration := LineDuration(line)
		if i == 0 {
			duration += RemovalMinutes(in.RemovalAddOns, in.RemovalIDs)
		}
		duration += line.Service.EffectiveBuffer()

		start := cursor
		if in.Simultaneous {
			start = in.Start
		}
		end := start.Add(time.Duration(duration) * time.Minute)

		price := LinePrice(line)
		if i == n-1 {
			price = totals.Price
		}

		addOnIDs := make([]uuid.UUID, 0, len(line.AddOns))
		for _, addOn := range line.AddOns {
			addOnIDs = append(addOnIDs, addOn.ID)
		}
		if i == 0 {
			for _, addOn := range in.RemovalAddOns {
				if _, ok := in.RemovalIDs[addOn.ID]; ok {
					addOnIDs = append(addOnIDs, addOn.ID)
				}
			}
		}

		drafts = append(drafts, model.BookingDraft{
			ID:              uuid.New(),
			ServiceID:       line.Service.ID,
			CustomerID:      in.CustomerID,
			StaffID:         line.Staff.StaffID,
			AppointmentDate: in.Date,
			StartTime:       start,
			EndTime:         end,
			Duration:        duration,
			AddOnIDs:        addOnIDs,
			Status:          model.BookingStatusPending,
			TotalPrice:      price,
			Notes:           planNotes(in, i, n),
			FromWeb:         false,
		})

		if !in.Simultaneous {
			cursor = end
		}
	}

	return drafts, nil
}

func planNotes(in PlanInput, i, n int) string {
	if i == 0 {
		if in.Notes != "" {
			return in.Notes
		}
		if in.Simultaneous {
			return "VIP Combo booking"
		}
		return ""
	}
	if in.Simultaneous {
		return fmt.Sprintf("VIP Combo - Part %d", i+1)
	}
	return fmt.Sprintf("Part %d of %d", i+1, n)
}
