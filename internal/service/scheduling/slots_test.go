package scheduling

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/admin-api/internal/model"
)

type fakeAvailability struct {
	slots   []model.TimeSlot
	err     error
	queries atomic.Int32
	last    AvailabilityQuery
	block   chan struct{}
}

func (f *fakeAvailability) QueryAvailability(ctx context.Context, q AvailabilityQuery) ([]model.TimeSlot, error) {
	f.queries.Add(1)
	f.last = q
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.slots, f.err
}

func testSession(lines ...model.SelectedServiceLine) *model.BookingSession {
	return &model.BookingSession{
		ID:    uuid.New(),
		State: model.StateDateTime,
		Date:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Lines: lines,
	}
}

func TestResolveRequiresSpecificStaff(t *testing.T) {
	client := &fakeAvailability{}
	resolver := NewSlotResolver(client)

	sess := testSession(model.SelectedServiceLine{
		Service: testService("Manicure", 30, 25, nil),
		Staff:   model.AnyStaff(),
	})

	_, err := resolver.Resolve(context.Background(), sess, nil, 0)
	assert.ErrorIs(t, err, ErrStaffUnassigned)
	assert.Equal(t, int32(0), client.queries.Load(), "no query may be issued")
}

func TestResolveShapesBatchedQuery(t *testing.T) {
	client := &fakeAvailability{slots: []model.TimeSlot{
		{Start: time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC), Available: true},
	}}
	resolver := NewSlotResolver(client)

	gel := testAddOn("Gel Finish", 10, intPtr(10), false)
	removal := testAddOn("Gel Removal", 5, intPtr(15), true)
	staffA, staffB := uuid.New(), uuid.New()

	sess := testSession(
		model.SelectedServiceLine{
			Service: testService("Manicure", 30, 25, intPtr(10)),
			AddOns:  []model.AddOn{gel},
			Staff:   model.SpecificStaff(staffA),
		},
		model.SelectedServiceLine{
			Service: testService("Pedicure", 45, 35, nil),
			Staff:   model.SpecificStaff(staffB),
		},
	)
	sess.RemovalIDs = []uuid.UUID{removal.ID}
	sess.Simultaneous = true

	slots, err := resolver.Resolve(context.Background(), sess, []model.AddOn{removal}, -300)
	require.NoError(t, err)
	require.Len(t, slots, 1)

	q := client.last
	require.Len(t, q.Lines, 2)
	assert.Equal(t, 40, q.Lines[0].Duration) // 30 + 10 add-on
	assert.Equal(t, 10, q.Lines[0].Buffer)
	assert.Equal(t, 45, q.Lines[1].Duration)
	assert.Equal(t, model.DefaultBufferTime, q.Lines[1].Buffer)
	assert.Equal(t, 15, q.RemovalMinutes)
	assert.True(t, q.Simultaneous)
	assert.Equal(t, -300, q.TimezoneOffsetMinutes)
}

func TestResolveEmptyResultIsNoSlots(t *testing.T) {
	resolver := NewSlotResolver(&fakeAvailability{})

	sess := testSession(model.SelectedServiceLine{
		Service: testService("Manicure", 30, 25, nil),
		Staff:   model.SpecificStaff(uuid.New()),
	})

	slots, err := resolver.Resolve(context.Background(), sess, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolveDiscardsStaleResponse(t *testing.T) {
	block := make(chan struct{})
	client := &fakeAvailability{block: block, slots: []model.TimeSlot{{Available: true}}}
	resolver := NewSlotResolver(client)

	sess := testSession(model.SelectedServiceLine{
		Service: testService("Manicure", 30, 25, nil),
		Staff:   model.SpecificStaff(uuid.New()),
	})

	firstDone := make(chan error, 1)
	go func() {
		_, err := resolver.Resolve(context.Background(), sess, nil, 0)
		firstDone <- err
	}()

	// wait until the first query is in flight, then issue a newer one
	require.Eventually(t, func() bool { return client.queries.Load() == 1 }, time.Second, time.Millisecond)

	second := &fakeAvailability{slots: []model.TimeSlot{{Available: true}}}
	resolver.client = second
	slots, err := resolver.Resolve(context.Background(), sess, nil, 0)
	require.NoError(t, err)
	assert.Len(t, slots, 1)

	close(block)
	assert.Error(t, <-firstDone, "superseded resolution must not return slots")
}
