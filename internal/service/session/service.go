package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/service/booking"
	"github.com/salonhq/admin-api/internal/service/scheduling"
	"github.com/salonhq/admin-api/pkg/logger"
)

// Store persists booking sessions between workflow steps.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*model.BookingSession, error)
	Save(ctx context.Context, sess *model.BookingSession) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CatalogReader supplies catalog records snapshotted into the session.
type CatalogReader interface {
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.ServiceCategory, error)
	GetAddOn(ctx context.Context, id uuid.UUID) (*model.AddOn, error)
	ListRemovalAddOns(ctx context.Context) ([]*model.AddOn, error)
}

// CustomerDirectory resolves the customer a session books for.
type CustomerDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
}

// PlanSubmitter turns a verified plan's drafts into persisted bookings.
type PlanSubmitter interface {
	SubmitPlan(ctx context.Context, drafts []model.BookingDraft, simultaneous bool) (*booking.SubmitResult, error)
}

// ServiceLineRequest selects one service and its add-ons for a session.
type ServiceLineRequest struct {
	ServiceID uuid.UUID   `json:"service_id"`
	AddOnIDs  []uuid.UUID `json:"addon_ids,omitempty"`
}

// Service drives the booking-creation workflow. Each step loads the
// session, applies one mutation, and persists it back; the FSM guards
// which step is reachable. Any mutation that can invalidate a previous
// overlap check clears the session's Verified flag.
type Service struct {
	store     Store
	catalog   CatalogReader
	compat    scheduling.CompatibilityChecker
	customers CustomerDirectory
	staff     scheduling.StaffRoster
	bookings  scheduling.BookingDirectory
	resolver  *scheduling.SlotResolver
	verifier  *scheduling.Verifier
	submitter PlanSubmitter
	logger    *logger.Logger
}

type Deps struct {
	Store     Store
	Catalog   CatalogReader
	Compat    scheduling.CompatibilityChecker
	Customers CustomerDirectory
	Staff     scheduling.StaffRoster
	Bookings  scheduling.BookingDirectory
	Resolver  *scheduling.SlotResolver
	Verifier  *scheduling.Verifier
	Submitter PlanSubmitter
	Logger    *logger.Logger
}

func NewService(deps Deps) *Service {
	return &Service{
		store:     deps.Store,
		catalog:   deps.Catalog,
		compat:    deps.Compat,
		customers: deps.Customers,
		staff:     deps.Staff,
		bookings:  deps.Bookings,
		resolver:  deps.Resolver,
		verifier:  deps.Verifier,
		submitter: deps.Submitter,
		logger:    deps.Logger,
	}
}

// Start opens a new session for a customer.
func (s *Service) Start(ctx context.Context, customerID uuid.UUID) (*model.BookingSession, error) {
	if _, err := s.customers.Get(ctx, customerID); err != nil {
		return nil, fmt.Errorf("customer not found: %w", err)
	}

	next, err := NextState(model.StateCustomer, TransitionInput{})
	if err != nil {
		return nil, err
	}

	sess := &model.BookingSession{
		ID:         uuid.New(),
		State:      next,
		CustomerID: customerID,
		CreatedAt:  time.Now(),
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.BookingSession, error) {
	return s.store.Get(ctx, id)
}

// SelectServices replaces the session's service lines. Services and
// add-ons are snapshotted so later steps work on consistent records even
// if the catalog changes mid-workflow.
func (s *Service) SelectServices(ctx context.Context, sessionID uuid.UUID, reqs []ServiceLineRequest) (*model.BookingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("select at least one service")
	}

	lines := make([]model.SelectedServiceLine, 0, len(reqs))
	categoryIDs := make([]uuid.UUID, 0, len(reqs))
	for _, req := range reqs {
		svc, err := s.catalog.GetService(ctx, req.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("service not found: %w", err)
		}
		if svc.Status != model.ServiceStatusActive {
			return nil, fmt.Errorf("service %q is not bookable", svc.Name)
		}

		addOns := make([]model.AddOn, 0, len(req.AddOnIDs))
		for _, addOnID := range req.AddOnIDs {
			addOn, err := s.catalog.GetAddOn(ctx, addOnID)
			if err != nil {
				return nil, fmt.Errorf("add-on not found: %w", err)
			}
			if !addOn.IsActive {
				return nil, fmt.Errorf("add-on %q is not bookable", addOn.Name)
			}
			if addOn.Removal {
				return nil, fmt.Errorf("removal add-on %q is selected through the removal prompt", addOn.Name)
			}
			if !addOn.CompatibleWith(svc.ID) {
				return nil, fmt.Errorf("add-on %q is not compatible with service %q", addOn.Name, svc.Name)
			}
			addOns = append(addOns, *addOn)
		}

		lines = append(lines, model.SelectedServiceLine{
			Service: *svc,
			AddOns:  addOns,
			Staff:   model.UnassignedStaff(),
		})
		categoryIDs = append(categoryIDs, svc.CategoryID)
	}

	incompatible, err := s.compat.IncompatibleCategories(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	for _, bad := range incompatible {
		for _, id := range categoryIDs {
			if id == bad {
				return nil, fmt.Errorf("selected services cannot be combined in one booking")
			}
		}
	}

	sess.Lines = lines
	sess.RemovalIDs = nil
	sess.Simultaneous = false
	s.invalidate(sess)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Advance moves the session to its next workflow step.
func (s *Service) Advance(ctx context.Context, sessionID uuid.UUID) (*model.BookingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	in, err := s.buildInput(ctx, sess)
	if err != nil {
		return nil, err
	}

	next, err := NextState(sess.State, in)
	if err != nil {
		return nil, err
	}

	sess.State = next
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetMode switches between sequential and simultaneous (VIP Combo)
// scheduling.
func (s *Service) SetMode(ctx context.Context, sessionID uuid.UUID, simultaneous bool) (*model.BookingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if simultaneous && len(sess.Lines) < 2 {
		return nil, fmt.Errorf("VIP Combo requires at least two services")
	}

	sess.Simultaneous = simultaneous
	s.invalidate(sess)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SelectRemovals records the removal add-ons chosen at the removal
// prompt. They attach to the plan's first line at build time.
func (s *Service) SelectRemovals(ctx context.Context, sessionID uuid.UUID, addOnIDs []uuid.UUID) (*model.BookingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, id := range addOnIDs {
		addOn, err := s.catalog.GetAddOn(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("add-on not found: %w", err)
		}
		if !addOn.Removal {
			return nil, fmt.Errorf("add-on %q is not a removal add-on", addOn.Name)
		}
		if !addOn.IsActive {
			return nil, fmt.Errorf("add-on %q is not bookable", addOn.Name)
		}
	}

	sess.RemovalIDs = addOnIDs
	s.invalidate(sess)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AssignStaff sets one line's staff choice.
func (s *Service) AssignStaff(ctx context.Context, sessionID uuid.UUID, lineIndex int, assignment model.StaffAssignment) (*model.BookingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if lineIndex < 0 || lineIndex >= len(sess.Lines) {
		return nil, fmt.Errorf("invalid service line index %d", lineIndex)
	}

	if assignment.Kind == model.AssignmentSpecific {
		if !assignment.IsSpecific() {
			return nil, fmt.Errorf("specific assignment needs a staff member")
		}
		roster, err := s.staff.ListBookable(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list staff: %w", err)
		}
		found := false
		for _, member := range roster {
			if member.ID == assignment.StaffID {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("staff member is not bookable")
		}
	}

	sess.Lines[lineIndex].Staff = assignment
	s.invalidate(sess)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetDate fixes the appointment date and resolves every "any" line to a
// concrete staff member: workloads for the chosen date are computed
// fresh and each line goes to the least busy member, counting the
// line's own minutes so consecutive lines spread across the roster.
func (s *Service) SetDate(ctx context.Context, sessionID uuid.UUID, date time.Time) (*model.BookingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(sess.Lines) == 0 {
		return nil, fmt.Errorf("select services before picking a date")
	}

	roster, err := s.staff.ListBookable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	dayBookings, err := s.bookings.ListForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	workloads := scheduling.ComputeWorkloads(dayBookings, roster, date)

	for i := range sess.Lines {
		if sess.Lines[i].Staff.Kind != model.AssignmentAny {
			continue
		}
		staffID, err := scheduling.PickLeastLoaded(workloads, roster)
		if err != nil {
			return nil, err
		}
		sess.Lines[i].Staff = model.SpecificStaff(staffID)

		minutes := scheduling.LineDuration(sess.Lines[i])
		for j := range workloads {
			if workloads[j].StaffID == staffID {
				workloads[j].Minutes += minutes
				break
			}
		}
	}

	sess.Date = date
	sess.StartTime = time.Time{}
	s.invalidate(sess)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ResolveSlots returns candidate start times for the session's current
// selection on its chosen date.
func (s *Service) ResolveSlots(ctx context.Context, sessionID uuid.UUID, tzOffsetMinutes int) ([]model.TimeSlot, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Date.IsZero() {
		return nil, fmt.Errorf("pick a date first")
	}

	removals, err := s.removalAddOns(ctx)
	if err != nil {
		return nil, err
	}

	return s.resolver.Resolve(ctx, sess, removals, tzOffsetMinutes)
}

// SetStartTime fixes the plan's base start.
func (s *Service) SetStartTime(ctx context.Context, sessionID uuid.UUID, start time.Time) (*model.BookingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Date.IsZero() {
		return nil, fmt.Errorf("pick a date first")
	}

	sess.StartTime = start
	s.invalidate(sess)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Verify runs the final overlap check for the chosen slot and marks the
// session verified on success.
func (s *Service) Verify(ctx context.Context, sessionID uuid.UUID) (*model.BookingSession, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Date.IsZero() || sess.StartTime.IsZero() {
		return nil, fmt.Errorf("pick a date and start time first")
	}

	removals, err := s.removalAddOns(ctx)
	if err != nil {
		return nil, err
	}

	err = s.verifier.Verify(ctx, scheduling.VerifyRequest{
		Date:          sess.Date,
		Start:         sess.StartTime,
		Lines:         sess.Lines,
		RemovalAddOns: removals,
		RemovalIDs:    sess.RemovalSet(),
		Simultaneous:  sess.Simultaneous,
	})
	if err != nil {
		return nil, err
	}

	sess.Verified = true
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Submit builds the verified plan's drafts and persists them. Notes
// entered at confirmation attach to the plan's first booking. On success
// the session is finished and removed from the store.
func (s *Service) Submit(ctx context.Context, sessionID uuid.UUID, notes string) (*booking.SubmitResult, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Verified {
		return nil, fmt.Errorf("verify the chosen slot before submitting")
	}
	if notes != "" {
		sess.Notes = notes
	}

	removals, err := s.removalAddOns(ctx)
	if err != nil {
		return nil, err
	}

	drafts, err := scheduling.BuildPlan(scheduling.PlanInput{
		CustomerID:    sess.CustomerID,
		Date:          sess.Date,
		Start:         sess.StartTime,
		Lines:         sess.Lines,
		RemovalAddOns: removals,
		RemovalIDs:    sess.RemovalSet(),
		Simultaneous:  sess.Simultaneous,
		Notes:         sess.Notes,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.submitter.SubmitPlan(ctx, drafts, sess.Simultaneous)
	if err != nil {
		return nil, err
	}

	sess.State = model.StateDone
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Error(err, "failed to delete finished booking session", "session_id", sessionID)
	}

	return result, nil
}

// Cancel abandons the workflow and discards the session. Nothing was
// persisted yet, so there is nothing else to undo.
func (s *Service) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	return s.store.Delete(ctx, sessionID)
}

// invalidate clears the verification flag after any mutation that could
// change the plan's layout.
func (s *Service) invalidate(sess *model.BookingSession) {
	sess.Verified = false
}

func (s *Service) removalAddOns(ctx context.Context) ([]model.AddOn, error) {
	listed, err := s.catalog.ListRemovalAddOns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list removal add-ons: %w", err)
	}
	out := make([]model.AddOn, 0, len(listed))
	for _, addOn := range listed {
		out = append(out, *addOn)
	}
	return out, nil
}

func (s *Service) buildInput(ctx context.Context, sess *model.BookingSession) (TransitionInput, error) {
	in := TransitionInput{
		LineCount:             len(sess.Lines),
		DistinctSpecificStaff: sess.DistinctSpecificStaff(),
		ComboOffered:          len(sess.Lines) >= 2,
		Simultaneous:          sess.Simultaneous,
		HasDateTime:           !sess.Date.IsZero() && !sess.StartTime.IsZero(),
		Verified:              sess.Verified,
	}

	in.NoneUnassigned = len(sess.Lines) > 0
	for _, line := range sess.Lines {
		if line.Staff.Kind == model.AssignmentUnassigned {
			in.NoneUnassigned = false
			break
		}
	}

	removalOffered, err := s.removalOffered(ctx, sess)
	if err != nil {
		return TransitionInput{}, err
	}
	in.RemovalOffered = removalOffered

	return in, nil
}

// removalOffered reports whether the removal prompt applies: a selected
// service's category asks for it and removal add-ons exist.
func (s *Service) removalOffered(ctx context.Context, sess *model.BookingSession) (bool, error) {
	prompts := false
	for _, line := range sess.Lines {
		category, err := s.catalog.GetCategory(ctx, line.Service.CategoryID)
		if err != nil {
			return false, fmt.Errorf("category not found: %w", err)
		}
		if category.RequiresRemovalPrompt {
			prompts = true
			break
		}
	}
	if !prompts {
		return false, nil
	}

	removals, err := s.catalog.ListRemovalAddOns(ctx)
	if err != nil {
		return false, err
	}
	return len(removals) > 0, nil
}
