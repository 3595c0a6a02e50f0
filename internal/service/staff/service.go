package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
	"github.com/salonhq/admin-api/internal/service/scheduling"
)

// Service manages the salon roster and exposes the per-day workload view
// used by the staff-selection screen.
type Service struct {
	repo     repository.StaffRepository
	bookings repository.BookingRepository
}

func NewService(repo repository.StaffRepository, bookings repository.BookingRepository) *Service {
	return &Service{repo: repo, bookings: bookings}
}

func (s *Service) CreateStaff(ctx context.Context, req *model.CreateStaffRequest) (*model.StaffMember, error) {
	now := time.Now()
	member := &model.StaffMember{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		IsActive:    true,
		IsAvailable: true,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return member, nil
}

func (s *Service) GetStaff(ctx context.Context, id uuid.UUID) (*model.StaffMember, error) {
	member, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return member, nil
}

func (s *Service) UpdateStaff(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.StaffMember, error) {
	member, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}

	if req.FirstName != nil {
		member.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		member.LastName = *req.LastName
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	if req.IsAvailable != nil {
		member.IsAvailable = *req.IsAvailable
	}
	member.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return member, nil
}

func (s *Service) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	return nil
}

func (s *Service) ListStaff(ctx context.Context) ([]*model.StaffMember, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListBookable(ctx context.Context) ([]*model.StaffMember, error) {
	return s.repo.ListBookable(ctx)
}

// GetWorkloads returns each bookable member's busy minutes for one day,
// idle members included so the least-busy choice is visible.
func (s *Service) GetWorkloads(ctx context.Context, date time.Time) ([]model.StaffWorkload, error) {
	roster, err := s.repo.ListBookable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	bookings, err := s.bookings.ListForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return scheduling.ComputeWorkloads(bookings, roster, date), nil
}
