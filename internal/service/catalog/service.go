package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	gocache "github.com/patrickmn/go-cache"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute

	categoriesKey    = "categories"
	removalAddOnsKey = "addons:removal"
)

// Service manages the salon catalog: services, categories and add-ons.
// Reads on the booking hot path (categories, removal add-ons) are cached;
// every write invalidates the cache.
type Service struct {
	services repository.ServiceRepository
	addOns   repository.AddOnRepository
	cache    *gocache.Cache
}

func NewService(services repository.ServiceRepository, addOns repository.AddOnRepository) *Service {
	return &Service{
		services: services,
		addOns:   addOns,
		cache:    gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) CreateService(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category ID")
	}

	if _, err := s.services.GetCategory(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("category not found: %w", err)
	}

	now := time.Now()
	svc := &model.Service{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       req.Price,
		BufferTime:  req.BufferTime,
		Status:      model.ServiceStatusActive,
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.cache.Flush()
	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	key := "service:" + id.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Service), nil
	}

	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	s.cache.Set(key, svc, gocache.DefaultExpiration)
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return nil, fmt.Errorf("duration must be positive")
		}
		svc.Duration = *req.Duration
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.BufferTime != nil {
		svc.BufferTime = req.BufferTime
	}
	if req.Status != nil {
		svc.Status = *req.Status
	}
	svc.UpdatedAt = time.Now()

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.cache.Flush()
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.services.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	s.cache.Flush()
	return nil
}

func (s *Service) ListServices(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, error) {
	return s.services.List(ctx, filters)
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*model.ServiceCategory, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return s.services.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]*model.ServiceCategory, error) {
	if cached, ok := s.cache.Get(categoriesKey); ok {
		return cached.([]*model.ServiceCategory), nil
	}

	categories, err := s.services.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	s.cache.Set(categoriesKey, categories, gocache.DefaultExpiration)
	return categories, nil
}

func (s *Service) CreateAddOn(ctx context.Context, req *model.CreateAddOnRequest) (*model.AddOn, error) {
	now := time.Now()
	addOn := &model.AddOn{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:                 req.Name,
		Price:                req.Price,
		AdditionalTime:       req.AdditionalTime,
		IsActive:             true,
		Removal:              req.Removal,
		CompatibleServiceIDs: pq.StringArray(req.CompatibleServiceIDs),
	}

	if err := s.addOns.Create(ctx, addOn); err != nil {
		return nil, fmt.Errorf("failed to create add-on: %w", err)
	}

	s.cache.Flush()
	return addOn, nil
}

func (s *Service) GetAddOn(ctx context.Context, id uuid.UUID) (*model.AddOn, error) {
	addOn, err := s.addOns.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get add-on: %w", err)
	}
	return addOn, nil
}

func (s *Service) UpdateAddOn(ctx context.Context, id uuid.UUID, req *model.UpdateAddOnRequest) (*model.AddOn, error) {
	addOn, err := s.addOns.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get add-on: %w", err)
	}

	if req.Name != nil {
		addOn.Name = *req.Name
	}
	if req.Price != nil {
		addOn.Price = *req.Price
	}
	if req.AdditionalTime != nil {
		addOn.AdditionalTime = req.AdditionalTime
	}
	if req.IsActive != nil {
		addOn.IsActive = *req.IsActive
	}
	if req.CompatibleServiceIDs != nil {
		addOn.CompatibleServiceIDs = pq.StringArray(req.CompatibleServiceIDs)
	}
	addOn.UpdatedAt = time.Now()

	if err := s.addOns.Update(ctx, addOn); err != nil {
		return nil, fmt.Errorf("failed to update add-on: %w", err)
	}

	s.cache.Flush()
	return addOn, nil
}

func (s *Service) DeleteAddOn(ctx context.Context, id uuid.UUID) error {
	if err := s.addOns.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete add-on: %w", err)
	}
	s.cache.Flush()
	return nil
}

func (s *Service) ListAddOns(ctx context.Context, filters *model.AddOnFilters) ([]*model.AddOn, error) {
	return s.addOns.List(ctx, filters)
}

// ListRemovalAddOns returns the active removal add-ons offered during the
// booking flow's removal prompt.
func (s *Service) ListRemovalAddOns(ctx context.Context) ([]*model.AddOn, error) {
	if cached, ok := s.cache.Get(removalAddOnsKey); ok {
		return cached.([]*model.AddOn), nil
	}

	removal := true
	addOns, err := s.addOns.List(ctx, &model.AddOnFilters{Removal: &removal, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list removal add-ons: %w", err)
	}

	s.cache.Set(removalAddOnsKey, addOns, gocache.DefaultExpiration)
	return addOns, nil
}
