package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
	apperrors "github.com/salonhq/admin-api/pkg/errors"
)

type Service struct {
	repo repository.CustomerRepository
}

func NewService(repo repository.CustomerRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCustomer(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	now := time.Now()
	customer := &model.Customer{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("customer", err)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// Get satisfies the booking workflow's customer lookup.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return s.GetCustomer(ctx, id)
}

func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, req *model.UpdateCustomerRequest) (*model.Customer, error) {
	customer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	customer.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

func (s *Service) ListCustomers(ctx context.Context, filters *model.CustomerFilters) ([]*model.Customer, error) {
	customers, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
