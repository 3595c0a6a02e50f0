package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/admin-api/internal/model"
)

func TestBuildPlanSequential(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	staff := uuid.New()

	drafts, err := BuildPlan(PlanInput{
		CustomerID: uuid.New(),
		Date:       date,
		Start:      at(date, 10, 0),
		Lines: []model.SelectedServiceLine{
			{Service: testService("Manicure", 30, 25, nil), Staff: model.SpecificStaff(staff)},
			{Service: testService("Pedicure", 45, 35, nil), Staff: model.SpecificStaff(staff)},
		},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	// each end = start + duration + buffer, next start = prior end
	assert.Equal(t, at(date, 10, 0), drafts[0].StartTime)
	assert.Equal(t, at(date, 10, 45), drafts[0].EndTime)
	assert.Equal(t, at(date, 10, 45), drafts[1].StartTime)
	assert.Equal(t, at(date, 11, 45), drafts[1].EndTime)
}

func TestBuildPlanSimultaneous(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	drafts, err := BuildPlan(PlanInput{
		CustomerID:   uuid.New(),
		Date:         date,
		Start:        at(date, 10, 0),
		Simultaneous: true,
		Lines: []model.SelectedServiceLine{
			{Service: testService("Manicure", 30, 25, nil), Staff: model.SpecificStaff(uuid.New())},
			{Service: testService("Pedicure", 45, 35, nil), Staff: model.SpecificStaff(uuid.New())},
		},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	// both lines share the base start, ends are independent
	assert.Equal(t, at(date, 10, 0), drafts[0].StartTime)
	assert.Equal(t, at(date, 10, 45), drafts[0].EndTime)
	assert.Equal(t, at(date, 10, 0), drafts[1].StartTime)
	assert.Equal(t, at(date, 11, 0), drafts[1].EndTime)
}

func TestBuildPlanPriceAllocation(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	staff := uuid.New()

	drafts, err := BuildPlan(PlanInput{
		CustomerID: uuid.New(),
		Date:       date,
		Start:      at(date, 10, 0),
		Lines: []model.SelectedServiceLine{
			{Service: testService("Manicure", 30, 20, nil), Staff: model.SpecificStaff(staff)},
			{Service: testService("Pedicure", 45, 30, nil), Staff: model.SpecificStaff(staff)},
			{Service: testService("Full Set", 60, 50, nil), Staff: model.SpecificStaff(staff)},
		},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	// first N-1 lines at unit price, last line absorbs the grand total
	assert.Equal(t, 20.0, drafts[0].TotalPrice)
	assert.Equal(t, 30.0, drafts[1].TotalPrice)
	assert.Equal(t, 100.0, drafts[2].TotalPrice)
}

func TestBuildPlanNotes(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	staff := uuid.New()
	lines := []model.SelectedServiceLine{
		{Service: testService("Manicure", 30, 25, nil), Staff: model.SpecificStaff(staff)},
		{Service: testService("Pedicure", 45, 35, nil), Staff: model.SpecificStaff(staff)},
	}

	sequential, err := BuildPlan(PlanInput{
		CustomerID: uuid.New(), Date: date, Start: at(date, 10, 0),
		Lines: lines, Notes: "regular client",
	})
	require.NoError(t, err)
	assert.Equal(t, "regular client", sequential[0].Notes)
	assert.Equal(t, "Part 2 of 2", sequential[1].Notes)

	combo, err := BuildPlan(PlanInput{
		CustomerID: uuid.New(), Date: date, Start: at(date, 10, 0),
		Lines: lines, Simultaneous: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "VIP Combo booking", combo[0].Notes)
	assert.Equal(t, "VIP Combo - Part 2", combo[1].Notes)
}

func TestBuildPlanFirstLineCarriesRemovals(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	staff := uuid.New()
	removal := testAddOn("Gel Removal", 10, intPtr(15), true)

	drafts, err := BuildPlan(PlanInput{
		CustomerID:    uuid.New(),
		Date:          date,
		Start:         at(date, 10, 0),
		RemovalAddOns: []model.AddOn{removal},
		RemovalIDs:    map[uuid.UUID]struct{}{removal.ID: {}},
		Lines: []model.SelectedServiceLine{
			{Service: testService("Manicure", 30, 25, nil), Staff: model.SpecificStaff(staff)},
			{Service: testService("Pedicure", 45, 35, nil), Staff: model.SpecificStaff(staff)},
		},
	})
	require.NoError(t, err)

	// removal time only on the first line: 30+15+15 = ends 11:00
	assert.Equal(t, at(date, 11, 0), drafts[0].EndTime)
	assert.Contains(t, drafts[0].AddOnIDs, removal.ID)
	assert.NotContains(t, drafts[1].AddOnIDs, removal.ID)
	assert.Equal(t, at(date, 12, 0), drafts[1].EndTime)

	// grand total includes the removal price
	assert.Equal(t, 70.0, drafts[1].TotalPrice)
}

func TestBuildPlanDraftDefaults(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	customer := uuid.New()

	drafts, err := BuildPlan(PlanInput{
		CustomerID: customer,
		Date:       date,
		Start:      at(date, 14, 0),
		Lines: []model.SelectedServiceLine{
			{Service: testService("Manicure", 30, 25, nil), Staff: model.SpecificStaff(uuid.New())},
		},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	draft := drafts[0]
	assert.NotEqual(t, uuid.Nil, draft.ID)
	assert.Equal(t, customer, draft.CustomerID)
	assert.Equal(t, model.BookingStatusPending, draft.Status)
	assert.False(t, draft.FromWeb)
	assert.Equal(t, 45, draft.Duration)
}

func TestBuildPlanRejectsUnassignedStaff(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := BuildPlan(PlanInput{
		CustomerID: uuid.New(),
		Date:       date,
		Start:      at(date, 10, 0),
		Lines: []model.SelectedServiceLine{
			{Service: testService("Manicure", 30, 25, nil), Staff: model.AnyStaff()},
		},
	})
	assert.ErrorIs(t, err, ErrStaffUnassigned)

	_, err = BuildPlan(PlanInput{CustomerID: uuid.New(), Date: date, Start: at(date, 10, 0)})
	assert.ErrorIs(t, err, ErrEmptyPlan)
}
