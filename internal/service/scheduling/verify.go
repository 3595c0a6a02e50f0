package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
)

// VerifyRequest carries the chosen slot and the session's selection for a
// final double-booking check before submission.
type VerifyRequest struct {
	Date          time.Time
	Start         time.Time
	Lines         []model.SelectedServiceLine
	RemovalAddOns []model.AddOn
	RemovalIDs    map[uuid.UUID]struct{}
	Simultaneous  bool
}

// Verifier performs the client-of-record overlap check against each
// staff member's existing bookings. It is advisory: the repository's
// conflict check at creation time remains authoritative, and the window
// between the two is handled by the submission rollback path.
type Verifier struct {
	bookings BookingDirectory
}

func NewVerifier(bookings BookingDirectory) *Verifier {
	return &Verifier{bookings: bookings}
}

// Verify walks the plan's lines in order and tests each line's interval,
// buffer included, against the assigned staff member's bookings on the
// chosen date. The first conflict fails the whole plan with a
// ConflictError naming the service/staff pair. In sequential mode the
// start cursor advances to each line's end; in simultaneous mode every
// line shares the base start.
func (v *Verifier) Verify(ctx context.Context, req VerifyRequest) error {
	if len(req.Lines) == 0 {
		return ErrEmptyPlan
	}

	// Simultaneous lines all run over the base window, so a staff member
	// appearing twice is an overlap within the plan itself regardless of
	// the day's calendar.
	if req.Simultaneous {
		seen := make(map[uuid.UUID]struct{}, len(req.Lines))
		for _, line := range req.Lines {
			if !line.Staff.IsSpecific() {
				return ErrStaffUnassigned
			}
			if _, dup := seen[line.Staff.StaffID]; dup {
				return ErrSharedStaff
			}
			seen[line.Staff.StaffID] = struct{}{}
		}
	}

	cursor := req.Start
	for i, line := range req.Lines {
		if !line.Staff.IsSpecific() {
			return ErrStaffUnassigned
		}

		duration := LineDuration(line)
		if i == 0 {
			duration += RemovalMinutes(req.RemovalAddOns, req.RemovalIDs)
		}
		buffer := line.Service.EffectiveBuffer()

		start := cursor
		if req.Simultaneous {
			start = req.Start
		}
		end := start.Add(time.Duration(duration+buffer) * time.Minute)

		existing, err := v.bookings.ListForStaffOnDate(ctx, line.Staff.StaffID, req.Date)
		if err != nil {
			return fmt.Errorf("failed to list bookings for staff %s: %w", line.Staff.StaffID, err)
		}

		for _, b := range existing {
			if !b.Active() {
				continue
			}
			if Overlaps(start, end, b.StartTime, b.EndTime) {
				verifyConflicts.Inc()
				return &ConflictError{
					ServiceID:   line.Service.ID,
					ServiceName: line.Service.Name,
					StaffID:     line.Staff.StaffID,
					BookingID:   b.ID,
				}
			}
		}

		if !req.Simultaneous {
			cursor = end
		}
	}

	verifySuccesses.Inc()
	return nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not conflict; buffer
// time is expected to already be folded into the end values.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
