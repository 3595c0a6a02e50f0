package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
	"github.com/salonhq/admin-api/internal/service/event"
	"github.com/salonhq/admin-api/internal/service/scheduling"
	"github.com/salonhq/admin-api/pkg/logger"
	"github.com/salonhq/admin-api/pkg/metrics"
)

const (
	MinBookingDuration = 15 * time.Minute
	MaxBookingDuration = 6 * time.Hour
	MaxAdvanceBooking  = 90 * 24 * time.Hour
)

type Service struct {
	repo    repository.BookingRepository
	emitter *event.Emitter
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(repo repository.BookingRepository, emitter *event.Emitter, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		emitter: emitter,
		metrics: m,
		logger:  log,
	}
}

// SubmitResult summarizes a successful plan submission.
type SubmitResult struct {
	BookingIDs []uuid.UUID `json:"booking_ids"`
	Created    int         `json:"created"`
	VIPCombo   bool        `json:"vip_combo"`
	TotalPrice float64     `json:"total_price"`
}

// SubmitPlan persists a verified booking plan, one row per draft, in
// order. Creation is strictly sequential: the repository's conflict
// check guards each row, and the first failure stops the run. Already
// persisted rows are then removed with compensating deletes so the plan
// is all-or-nothing; if a delete itself fails the orphaned IDs are
// surfaced in a RollbackError.
func (s *Service) SubmitPlan(ctx context.Context, drafts []model.BookingDraft, simultaneous bool) (*SubmitResult, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("empty booking plan")
	}

	created := make([]uuid.UUID, 0, len(drafts))
	var total float64

	for i := range drafts {
		b := draftToBooking(&drafts[i])

		conflict, err := s.repo.CheckConflicts(ctx, b.StaffID, b.StartTime, b.EndTime, nil)
		if err == nil && conflict {
			err = &scheduling.ConflictError{ServiceID: b.ServiceID, StaffID: b.StaffID}
		}
		if err == nil {
			err = s.repo.Create(ctx, b)
		}
		if err != nil {
			s.metrics.PlanSubmissions.WithLabelValues("failed").Inc()
			return nil, s.rollback(ctx, created, err)
		}

		created = append(created, b.ID)
		total += b.TotalPrice
	}

	mode := "sequential"
	if simultaneous {
		mode = "simultaneous"
	}
	s.metrics.BookingsCreated.WithLabelValues(mode).Add(float64(len(created)))
	s.metrics.PlanSubmissions.WithLabelValues("success").Inc()

	result := &SubmitResult{
		BookingIDs: created,
		Created:    len(created),
		VIPCombo:   simultaneous,
		TotalPrice: total,
	}

	if err := s.emitter.Emit(ctx, model.EventPlanSubmitted, result); err != nil {
		s.logger.Error(err, "failed to emit plan submission event")
	}

	return result, nil
}

// rollback deletes the bookings created so far, newest first. Deletes
// that fail leave orphans the caller must surface for manual cleanup.
func (s *Service) rollback(ctx context.Context, created []uuid.UUID, cause error) error {
	if len(created) == 0 {
		return cause
	}

	scheduling.RecordRollback()

	var orphaned []uuid.UUID
	for i := len(created) - 1; i >= 0; i-- {
		if err := s.repo.Delete(ctx, created[i]); err != nil {
			s.logger.Error(err, "compensating delete failed", "booking_id", created[i])
			orphaned = append(orphaned, created[i])
		}
	}

	if len(orphaned) > 0 {
		return &RollbackError{Cause: cause, OrphanedIDs: orphaned}
	}
	return fmt.Errorf("plan submission rolled back: %w", cause)
}

func (s *Service) CreateBooking(ctx context.Context, b *model.Booking) error {
	if err := s.validateBooking(b); err != nil {
		return fmt.Errorf("invalid booking: %w", err)
	}

	conflict, err := s.repo.CheckConflicts(ctx, b.StaffID, b.StartTime, b.EndTime, nil)
	if err != nil {
		return fmt.Errorf("failed to check conflicts: %w", err)
	}
	if conflict {
		return &scheduling.ConflictError{ServiceID: b.ServiceID, StaffID: b.StaffID}
	}

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.Status = model.BookingStatusPending
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()

	if err := s.repo.Create(ctx, b); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.BookingsCreated.WithLabelValues("single").Inc()

	if err := s.emitter.Emit(ctx, model.EventBookingCreated, b); err != nil {
		s.logger.Error(err, "failed to emit booking created event", "booking_id", b.ID)
	}

	return nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (s *Service) UpdateBooking(ctx context.Context, id uuid.UUID, req *model.UpdateBookingRequest) (*model.Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b.Status == model.BookingStatusCancelled {
		return nil, fmt.Errorf("cannot update a cancelled booking")
	}

	reschedule := false
	if req.StartTime != nil {
		b.StartTime = *req.StartTime
		reschedule = true
	}
	if req.EndTime != nil {
		b.EndTime = *req.EndTime
		reschedule = true
	}
	if req.StaffID != nil {
		staffID, err := uuid.Parse(*req.StaffID)
		if err != nil {
			return nil, fmt.Errorf("invalid staff ID")
		}
		b.StaffID = staffID
		reschedule = true
	}
	if req.Status != nil {
		b.Status = *req.Status
	}
	if req.Notes != nil {
		b.Notes = *req.Notes
	}

	if reschedule {
		conflict, err := s.repo.CheckConflicts(ctx, b.StaffID, b.StartTime, b.EndTime, &b.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check conflicts: %w", err)
		}
		if conflict {
			return nil, &scheduling.ConflictError{ServiceID: b.ServiceID, StaffID: b.StaffID}
		}
	}

	b.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if err := s.emitter.Emit(ctx, model.EventBookingUpdated, b); err != nil {
		s.logger.Error(err, "failed to emit booking updated event", "booking_id", b.ID)
	}

	return b, nil
}

func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID, reason string) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}

	if b.Status == model.BookingStatusCancelled {
		return fmt.Errorf("booking is already cancelled")
	}
	if b.Status == model.BookingStatusCompleted {
		return fmt.Errorf("cannot cancel a completed booking")
	}

	b.Status = model.BookingStatusCancelled
	if reason != "" {
		b.Notes = reason
	}
	b.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, b); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.metrics.BookingsCancelled.Inc()

	if err := s.emitter.Emit(ctx, model.EventBookingCancelled, b); err != nil {
		s.logger.Error(err, "failed to emit booking cancelled event", "booking_id", b.ID)
	}

	return nil
}

// DeleteBooking removes a booking row. Only cancelled bookings can be
// deleted through the admin surface.
func (s *Service) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}

	if b.Status != model.BookingStatusCancelled {
		return fmt.Errorf("can only delete cancelled bookings")
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	bookings, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) validateBooking(b *model.Booking) error {
	if b.ServiceID == uuid.Nil {
		return fmt.Errorf("service ID is required")
	}
	if b.CustomerID == uuid.Nil {
		return fmt.Errorf("customer ID is required")
	}
	if b.StaffID == uuid.Nil {
		return fmt.Errorf("staff ID is required")
	}

	duration := b.EndTime.Sub(b.StartTime)
	if duration < MinBookingDuration || duration > MaxBookingDuration {
		return fmt.Errorf("invalid booking duration: must be between %v and %v", MinBookingDuration, MaxBookingDuration)
	}

	if b.StartTime.Sub(time.Now()) > MaxAdvanceBooking {
		return fmt.Errorf("booking cannot be more than %v in advance", MaxAdvanceBooking)
	}

	return nil
}

func draftToBooking(d *model.BookingDraft) *model.Booking {
	addOnIDs := make(pq.StringArray, 0, len(d.AddOnIDs))
	for _, id := range d.AddOnIDs {
		addOnIDs = append(addOnIDs, id.String())
	}

	now := time.Now()
	return &model.Booking{
		Base: model.Base{
			ID:        d.ID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		ServiceID:       d.ServiceID,
		CustomerID:      d.CustomerID,
		StaffID:         d.StaffID,
		AppointmentDate: d.AppointmentDate,
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
		Duration:        d.Duration,
		AddOnIDs:        addOnIDs,
		Status:          d.Status,
		TotalPrice:      d.TotalPrice,
		Notes:           d.Notes,
		FromWeb:         d.FromWeb,
	}
}
