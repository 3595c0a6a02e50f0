package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/service/booking"
	"github.com/salonhq/admin-api/internal/service/scheduling"
	"github.com/salonhq/admin-api/pkg/logger"
)

type memoryStore struct {
	sessions map[uuid.UUID]*model.BookingSession
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[uuid.UUID]*model.BookingSession)}
}

func (m *memoryStore) Get(ctx context.Context, id uuid.UUID) (*model.BookingSession, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (m *memoryStore) Save(ctx context.Context, sess *model.BookingSession) error {
	cp := *sess
	m.sessions[sess.ID] = &cp
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

type fakeCatalog struct {
	services   map[uuid.UUID]*model.Service
	categories map[uuid.UUID]*model.ServiceCategory
	addOns     map[uuid.UUID]*model.AddOn
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		services:   make(map[uuid.UUID]*model.Service),
		categories: make(map[uuid.UUID]*model.ServiceCategory),
		addOns:     make(map[uuid.UUID]*model.AddOn),
	}
}

func (f *fakeCatalog) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, errors.New("service not found")
	}
	return svc, nil
}

func (f *fakeCatalog) GetCategory(ctx context.Context, id uuid.UUID) (*model.ServiceCategory, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, errors.New("category not found")
	}
	return c, nil
}

func (f *fakeCatalog) GetAddOn(ctx context.Context, id uuid.UUID) (*model.AddOn, error) {
	a, ok := f.addOns[id]
	if !ok {
		return nil, errors.New("add-on not found")
	}
	return a, nil
}

func (f *fakeCatalog) ListRemovalAddOns(ctx context.Context) ([]*model.AddOn, error) {
	var out []*model.AddOn
	for _, a := range f.addOns {
		if a.Removal && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeCompat struct {
	conflicting []uuid.UUID
}

func (f *fakeCompat) IncompatibleCategories(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return f.conflicting, nil
}

func (f *fakeCompat) IncompatibleAddOns(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeCustomers struct {
	known map[uuid.UUID]bool
}

func (f *fakeCustomers) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	if !f.known[id] {
		return nil, errors.New("customer not found")
	}
	return &model.Customer{Base: model.Base{ID: id}}, nil
}

type fakeRoster struct {
	staff []*model.StaffMember
}

func (f *fakeRoster) ListBookable(ctx context.Context) ([]*model.StaffMember, error) {
	return f.staff, nil
}

type fakeBookings struct {
	byStaff map[uuid.UUID][]*model.Booking
}

func (f *fakeBookings) ListForStaffOnDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*model.Booking, error) {
	return f.byStaff[staffID], nil
}

func (f *fakeBookings) ListForDate(ctx context.Context, date time.Time) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, bs := range f.byStaff {
		out = append(out, bs...)
	}
	return out, nil
}

type fakeClient struct {
	slots []model.TimeSlot
}

func (f *fakeClient) QueryAvailability(ctx context.Context, q scheduling.AvailabilityQuery) ([]model.TimeSlot, error) {
	return f.slots, nil
}

type fakeSubmitter struct {
	drafts []model.BookingDraft
	fail   error
}

func (f *fakeSubmitter) SubmitPlan(ctx context.Context, drafts []model.BookingDraft, simultaneous bool) (*booking.SubmitResult, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.drafts = drafts
	ids := make([]uuid.UUID, 0, len(drafts))
	for _, d := range drafts {
		ids = append(ids, d.ID)
	}
	return &booking.SubmitResult{BookingIDs: ids, Created: len(ids), VIPCombo: simultaneous}, nil
}

type fixture struct {
	svc       *Service
	store     *memoryStore
	catalog   *fakeCatalog
	customers *fakeCustomers
	roster    *fakeRoster
	bookings  *fakeBookings
	submitter *fakeSubmitter

	customerID uuid.UUID
	manicure   *model.Service
	pedicure   *model.Service
	gelRemoval *model.AddOn
	staffA     *model.StaffMember
	staffB     *model.StaffMember
}

func newFixture() *fixture {
	catalog := newFakeCatalog()

	nailCat := &model.ServiceCategory{
		Base:                  model.Base{ID: uuid.New()},
		Name:                  "Nails",
		RequiresRemovalPrompt: true,
	}
	catalog.categories[nailCat.ID] = nailCat

	manicure := &model.Service{
		Base:       model.Base{ID: uuid.New()},
		CategoryID: nailCat.ID,
		Name:       "Gel Manicure",
		Duration:   45,
		Price:      40,
		Status:     model.ServiceStatusActive,
	}
	pedicure := &model.Service{
		Base:       model.Base{ID: uuid.New()},
		CategoryID: nailCat.ID,
		Name:       "Spa Pedicure",
		Duration:   60,
		Price:      55,
		Status:     model.ServiceStatusActive,
	}
	catalog.services[manicure.ID] = manicure
	catalog.services[pedicure.ID] = pedicure

	extra := 20
	gelRemoval := &model.AddOn{
		Base:           model.Base{ID: uuid.New()},
		Name:           "Gel Removal",
		Price:          15,
		AdditionalTime: &extra,
		IsActive:       true,
		Removal:        true,
	}
	catalog.addOns[gelRemoval.ID] = gelRemoval

	staffA := &model.StaffMember{Base: model.Base{ID: uuid.New()}, FirstName: "Ana", IsActive: true, IsAvailable: true}
	staffB := &model.StaffMember{Base: model.Base{ID: uuid.New()}, FirstName: "Mia", IsActive: true, IsAvailable: true}

	customerID := uuid.New()
	store := newMemoryStore()
	roster := &fakeRoster{staff: []*model.StaffMember{staffA, staffB}}
	bookings := &fakeBookings{byStaff: make(map[uuid.UUID][]*model.Booking)}
	submitter := &fakeSubmitter{}
	customers := &fakeCustomers{known: map[uuid.UUID]bool{customerID: true}}

	svc := NewService(Deps{
		Store:     store,
		Catalog:   catalog,
		Compat:    &fakeCompat{},
		Customers: customers,
		Staff:     roster,
		Bookings:  bookings,
		Resolver:  scheduling.NewSlotResolver(&fakeClient{}),
		Verifier:  scheduling.NewVerifier(bookings),
		Submitter: submitter,
		Logger:    logger.NewLogger(nil),
	})

	return &fixture{
		svc:        svc,
		store:      store,
		catalog:    catalog,
		customers:  customers,
		roster:     roster,
		bookings:   bookings,
		submitter:  submitter,
		customerID: customerID,
		manicure:   manicure,
		pedicure:   pedicure,
		gelRemoval: gelRemoval,
		staffA:     staffA,
		staffB:     staffB,
	}
}

func TestWorkflow_FullSequentialRun(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	assert.Equal(t, model.StateServices, sess.State)

	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{
		{ServiceID: f.manicure.ID},
		{ServiceID: f.pedicure.ID},
	})
	require.NoError(t, err)
	require.Len(t, sess.Lines, 2)
	assert.Equal(t, model.AssignmentUnassigned, sess.Lines[0].Staff.Kind)

	// services -> combo prompt (two lines) -> removal prompt (nail
	// category) -> staff.
	sess, err = f.svc.Advance(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateComboPrompt, sess.State)

	sess, err = f.svc.Advance(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateRemovalPrompt, sess.State)

	sess, err = f.svc.SelectRemovals(ctx, sess.ID, []uuid.UUID{f.gelRemoval.ID})
	require.NoError(t, err)

	sess, err = f.svc.Advance(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateStaff, sess.State)

	sess, err = f.svc.AssignStaff(ctx, sess.ID, 0, model.SpecificStaff(f.staffA.ID))
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 1, model.AnyStaff())
	require.NoError(t, err)

	sess, err = f.svc.Advance(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateDateTime, sess.State)

	date := time.Date(2027, 2, 3, 0, 0, 0, 0, time.UTC)
	sess, err = f.svc.SetDate(ctx, sess.ID, date)
	require.NoError(t, err)
	assert.True(t, sess.AllStaffSpecific(), "any lines resolve at date selection")

	sess, err = f.svc.SetStartTime(ctx, sess.ID, date.Add(10*time.Hour))
	require.NoError(t, err)

	sess, err = f.svc.Verify(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, sess.Verified)

	sess, err = f.svc.Advance(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateConfirm, sess.State)

	result, err := f.svc.Submit(ctx, sess.ID, "allergic to acetone")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.False(t, result.VIPCombo)

	// Removal minutes and the entered notes land on the first draft only.
	require.Len(t, f.submitter.drafts, 2)
	first := f.submitter.drafts[0]
	assert.Equal(t, 45+20+model.DefaultBufferTime, first.Duration)
	assert.Contains(t, first.AddOnIDs, f.gelRemoval.ID)
	assert.NotContains(t, f.submitter.drafts[1].AddOnIDs, f.gelRemoval.ID)
	assert.Equal(t, "allergic to acetone", first.Notes)
	assert.Empty(t, f.submitter.drafts[1].Notes)

	// The session is gone after submission.
	_, err = f.svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStart_UnknownCustomer(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Start(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "customer not found")
}

func TestSelectServices_SnapshotsCatalogRecords(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)

	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{{ServiceID: f.manicure.ID}})
	require.NoError(t, err)

	// A later price change does not affect the in-flight session.
	f.catalog.services[f.manicure.ID].Price = 99

	reloaded, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, reloaded.Lines[0].Service.Price, 0.001)
}

func TestSelectServices_RejectsInactiveService(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.services[f.manicure.ID].Status = model.ServiceStatusInactive

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)

	_, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{{ServiceID: f.manicure.ID}})
	assert.ErrorContains(t, err, "not bookable")
}

func TestSelectServices_RejectsRemovalAddOnOnLine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)

	_, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{
		{ServiceID: f.manicure.ID, AddOnIDs: []uuid.UUID{f.gelRemoval.ID}},
	})
	assert.ErrorContains(t, err, "removal prompt")
}

func TestSelectServices_RejectsConflictingCategories(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)

	compat := &fakeCompat{conflicting: []uuid.UUID{f.manicure.CategoryID}}
	f.svc.compat = compat

	_, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{{ServiceID: f.manicure.ID}})
	assert.ErrorContains(t, err, "cannot be combined")
}

func TestSetMode_RequiresTwoLinesForCombo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)

	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{{ServiceID: f.manicure.ID}})
	require.NoError(t, err)

	_, err = f.svc.SetMode(ctx, sess.ID, true)
	assert.ErrorContains(t, err, "two services")
}

func TestMutationsClearVerification(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{
		{ServiceID: f.manicure.ID},
		{ServiceID: f.pedicure.ID},
	})
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 0, model.SpecificStaff(f.staffA.ID))
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 1, model.SpecificStaff(f.staffB.ID))
	require.NoError(t, err)

	date := time.Date(2027, 2, 3, 0, 0, 0, 0, time.UTC)
	sess, err = f.svc.SetDate(ctx, sess.ID, date)
	require.NoError(t, err)
	sess, err = f.svc.SetStartTime(ctx, sess.ID, date.Add(10*time.Hour))
	require.NoError(t, err)
	sess, err = f.svc.Verify(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, sess.Verified)

	// Moving the start time invalidates the earlier check.
	sess, err = f.svc.SetStartTime(ctx, sess.ID, date.Add(11*time.Hour))
	require.NoError(t, err)
	assert.False(t, sess.Verified)

	_, err = f.svc.Submit(ctx, sess.ID, "")
	assert.ErrorContains(t, err, "verify")
}

func TestVerify_SurfacesConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	date := time.Date(2027, 2, 3, 0, 0, 0, 0, time.UTC)
	f.bookings.byStaff[f.staffA.ID] = []*model.Booking{{
		Base:            model.Base{ID: uuid.New()},
		StaffID:         f.staffA.ID,
		AppointmentDate: date,
		StartTime:       date.Add(10 * time.Hour),
		EndTime:         date.Add(11 * time.Hour),
		Status:          model.BookingStatusConfirmed,
	}}

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{{ServiceID: f.manicure.ID}})
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 0, model.SpecificStaff(f.staffA.ID))
	require.NoError(t, err)
	sess, err = f.svc.SetDate(ctx, sess.ID, date)
	require.NoError(t, err)
	sess, err = f.svc.SetStartTime(ctx, sess.ID, date.Add(10*time.Hour+30*time.Minute))
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, sess.ID)
	require.Error(t, err)
	assert.True(t, scheduling.IsConflict(err))

	reloaded, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Verified)
}

func TestVerify_SimultaneousSameStaffRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// SetMode after staff assignment skips the staff-step guard, so the
	// verifier has to catch a combo whose lines share one staff member.
	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{
		{ServiceID: f.manicure.ID},
		{ServiceID: f.pedicure.ID},
	})
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 0, model.SpecificStaff(f.staffA.ID))
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 1, model.SpecificStaff(f.staffA.ID))
	require.NoError(t, err)
	sess, err = f.svc.SetMode(ctx, sess.ID, true)
	require.NoError(t, err)

	date := time.Date(2027, 2, 3, 0, 0, 0, 0, time.UTC)
	sess, err = f.svc.SetDate(ctx, sess.ID, date)
	require.NoError(t, err)
	sess, err = f.svc.SetStartTime(ctx, sess.ID, date.Add(10*time.Hour))
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, sess.ID)
	assert.ErrorIs(t, err, scheduling.ErrSharedStaff)

	reloaded, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Verified)
}

func TestSetDate_SpreadsAnyLinesAcrossRoster(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{
		{ServiceID: f.manicure.ID},
		{ServiceID: f.pedicure.ID},
	})
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 0, model.AnyStaff())
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 1, model.AnyStaff())
	require.NoError(t, err)

	date := time.Date(2027, 2, 3, 0, 0, 0, 0, time.UTC)
	sess, err = f.svc.SetDate(ctx, sess.ID, date)
	require.NoError(t, err)

	require.True(t, sess.AllStaffSpecific())
	assert.NotEqual(t, sess.Lines[0].Staff.StaffID, sess.Lines[1].Staff.StaffID,
		"consecutive auto-assignments spread across idle staff")
}

func TestSubmit_VIPComboSharesBaseStart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{
		{ServiceID: f.manicure.ID},
		{ServiceID: f.pedicure.ID},
	})
	require.NoError(t, err)
	sess, err = f.svc.SetMode(ctx, sess.ID, true)
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 0, model.SpecificStaff(f.staffA.ID))
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 1, model.SpecificStaff(f.staffB.ID))
	require.NoError(t, err)

	date := time.Date(2027, 2, 3, 0, 0, 0, 0, time.UTC)
	sess, err = f.svc.SetDate(ctx, sess.ID, date)
	require.NoError(t, err)
	start := date.Add(10 * time.Hour)
	sess, err = f.svc.SetStartTime(ctx, sess.ID, start)
	require.NoError(t, err)
	sess, err = f.svc.Verify(ctx, sess.ID)
	require.NoError(t, err)

	result, err := f.svc.Submit(ctx, sess.ID, "")
	require.NoError(t, err)
	assert.True(t, result.VIPCombo)

	require.Len(t, f.submitter.drafts, 2)
	assert.True(t, f.submitter.drafts[0].StartTime.Equal(start))
	assert.True(t, f.submitter.drafts[1].StartTime.Equal(start))
	assert.Equal(t, "VIP Combo booking", f.submitter.drafts[0].Notes)
	assert.Equal(t, "VIP Combo - Part 2", f.submitter.drafts[1].Notes)
}

func TestCancel_DiscardsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, sess.ID))

	_, err = f.svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveSlots_RequiresDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	_, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{{ServiceID: f.manicure.ID}})
	require.NoError(t, err)

	_, err = f.svc.ResolveSlots(ctx, sess.ID, 0)
	assert.ErrorContains(t, err, "date")
}

func TestResolveSlots_EmptyMeansNoSlots(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{{ServiceID: f.manicure.ID}})
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 0, model.SpecificStaff(f.staffA.ID))
	require.NoError(t, err)
	sess, err = f.svc.SetDate(ctx, sess.ID, time.Date(2027, 2, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	slots, err := f.svc.ResolveSlots(ctx, sess.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestSubmit_SubmitterFailureKeepsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, f.customerID)
	require.NoError(t, err)
	sess, err = f.svc.SelectServices(ctx, sess.ID, []ServiceLineRequest{{ServiceID: f.manicure.ID}})
	require.NoError(t, err)
	sess, err = f.svc.AssignStaff(ctx, sess.ID, 0, model.SpecificStaff(f.staffA.ID))
	require.NoError(t, err)
	date := time.Date(2027, 2, 3, 0, 0, 0, 0, time.UTC)
	sess, err = f.svc.SetDate(ctx, sess.ID, date)
	require.NoError(t, err)
	sess, err = f.svc.SetStartTime(ctx, sess.ID, date.Add(10*time.Hour))
	require.NoError(t, err)
	sess, err = f.svc.Verify(ctx, sess.ID)
	require.NoError(t, err)

	f.submitter.fail = fmt.Errorf("storage unavailable")

	_, err = f.svc.Submit(ctx, sess.ID, "")
	require.Error(t, err)

	// The session survives so the operator can retry.
	reloaded, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Verified)
}
