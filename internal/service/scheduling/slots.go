package scheduling

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/salonhq/admin-api/internal/model"
)

// SlotResolver shapes one batched availability query for a booking
// session and interprets the response. Conflict computation itself is
// delegated to the AvailabilityClient, which stays authoritative.
//
// Only the newest request counts: starting a resolution cancels any
// in-flight one, and a slower earlier response is discarded instead of
// being applied over a newer result.
type SlotResolver struct {
	client AvailabilityClient

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewSlotResolver(client AvailabilityClient) *SlotResolver {
	return &SlotResolver{client: client}
}

// Resolve returns candidate start times for the session's current
// selection. Every line must carry a concrete staff member; otherwise
// ErrStaffUnassigned is returned and no query is issued. An empty
// response means "no slots", not an error.
func (r *SlotResolver) Resolve(ctx context.Context, sess *model.BookingSession, removalAddOns []model.AddOn, tzOffsetMinutes int) ([]model.TimeSlot, error) {
	if len(sess.Lines) == 0 {
		return nil, ErrEmptyPlan
	}
	if !sess.AllStaffSpecific() {
		return nil, ErrStaffUnassigned
	}

	query := r.buildQuery(sess, removalAddOns, tzOffsetMinutes)

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	slots, err := r.client.QueryAvailability(ctx, query)

	r.mu.Lock()
	stale := gen != r.gen
	if !stale {
		r.cancel = nil
	}
	r.mu.Unlock()

	if stale {
		log.Debug().
			Uint64("generation", gen).
			Msg("discarding stale availability response")
		return nil, context.Canceled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}

	if len(slots) == 0 {
		return []model.TimeSlot{}, nil
	}
	return slots, nil
}

func (r *SlotResolver) buildQuery(sess *model.BookingSession, removalAddOns []model.AddOn, tzOffsetMinutes int) AvailabilityQuery {
	lines := make([]ServiceLineSpec, 0, len(sess.Lines))
	for _, line := range sess.Lines {
		lines = append(lines, ServiceLineSpec{
			ServiceID: line.Service.ID,
			StaffID:   line.Staff.StaffID,
			Duration:  LineDuration(line),
			Buffer:    line.Service.EffectiveBuffer(),
		})
	}
	return AvailabilityQuery{
		Date:                  sess.Date,
		Lines:                 lines,
		RemovalMinutes:        RemovalMinutes(removalAddOns, sess.RemovalSet()),
		Simultaneous:          sess.Simultaneous,
		TimezoneOffsetMinutes: tzOffsetMinutes,
	}
}
