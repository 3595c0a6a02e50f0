package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/admin-api/internal/model"
)

func testStaff(name string, bookable bool) *model.StaffMember {
	s := &model.StaffMember{
		FirstName:   name,
		LastName:    "Tester",
		IsActive:    bookable,
		IsAvailable: bookable,
	}
	s.ID = uuid.New()
	return s
}

func testBooking(staffID uuid.UUID, date time.Time, startHour, minutes int, status model.BookingStatus) *model.Booking {
	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, 0, 0, 0, date.Location())
	b := &model.Booking{
		StaffID:         staffID,
		AppointmentDate: date,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(minutes) * time.Minute),
		Status:          status,
	}
	b.ID = uuid.New()
	return b
}

func TestComputeWorkloadsIncludesIdleStaff(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	busy := testStaff("Ana", true)
	idle := testStaff("Bea", true)
	inactive := testStaff("Cruz", false)

	bookings := []*model.Booking{
		testBooking(busy.ID, date, 10, 60, model.BookingStatusConfirmed),
	}

	workloads := ComputeWorkloads(bookings, []*model.StaffMember{busy, idle, inactive}, date)
	require.Len(t, workloads, 2)
	assert.Equal(t, busy.ID, workloads[0].StaffID)
	assert.Equal(t, 60, workloads[0].Minutes)
	assert.Equal(t, idle.ID, workloads[1].StaffID)
	assert.Equal(t, 0, workloads[1].Minutes)
}

func TestComputeWorkloadsExcludesCancelledAndOtherDates(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	staff := testStaff("Ana", true)

	bookings := []*model.Booking{
		testBooking(staff.ID, date, 10, 45, model.BookingStatusConfirmed),
		testBooking(staff.ID, date, 12, 30, model.BookingStatusCancelled),
		testBooking(staff.ID, date.AddDate(0, 0, 1), 10, 90, model.BookingStatusConfirmed),
	}

	workloads := ComputeWorkloads(bookings, []*model.StaffMember{staff}, date)
	require.Len(t, workloads, 1)
	assert.Equal(t, 45, workloads[0].Minutes)
}

func TestPickLeastLoaded(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	workloads := []model.StaffWorkload{
		{StaffID: a, Minutes: 30},
		{StaffID: b, Minutes: 10},
		{StaffID: c, Minutes: 50},
	}

	picked, err := PickLeastLoaded(workloads, nil)
	require.NoError(t, err)
	assert.Equal(t, b, picked)
}

func TestPickLeastLoadedTieResolvesToFirst(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	workloads := []model.StaffWorkload{
		{StaffID: first, Minutes: 0},
		{StaffID: second, Minutes: 0},
	}

	picked, err := PickLeastLoaded(workloads, nil)
	require.NoError(t, err)
	assert.Equal(t, first, picked)
}

func TestPickLeastLoadedFallsBackToRoster(t *testing.T) {
	inactive := testStaff("Cruz", false)
	bookable := testStaff("Ana", true)

	picked, err := PickLeastLoaded(nil, []*model.StaffMember{inactive, bookable})
	require.NoError(t, err)
	assert.Equal(t, bookable.ID, picked)

	_, err = PickLeastLoaded(nil, []*model.StaffMember{inactive})
	assert.ErrorIs(t, err, ErrNoStaffAvailable)
}
