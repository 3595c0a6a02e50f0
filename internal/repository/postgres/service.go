package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
)

type serviceRepository struct {
	db *sqlx.DB
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (
			id, category_id, name, description, duration, price,
			buffer_time, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	service.ID = uuid.New()
	service.CreatedAt = time.Now()
	service.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.CategoryID,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.BufferTime,
		service.Status,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, category_id, name, description, duration, price,
			   buffer_time, status, created_at, updated_at
		FROM services
		WHERE id = $1 AND deleted_at IS NULL
	`
	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, duration = $3, price = $4,
			buffer_time = $5, status = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	service.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.BufferTime,
		service.Status,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("service not found")
	}
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE services SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("service not found")
	}
	return nil
}

func (r *serviceRepository) List(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, error) {
	query := `
		SELECT id, category_id, name, description, duration, price,
			   buffer_time, status, created_at, updated_at
		FROM services
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.CategoryID != uuid.Nil {
			query += fmt.Sprintf(" AND category_id = $%d", argCount)
			args = append(args, filters.CategoryID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.SearchTerm != "" {
			query += fmt.Sprintf(" AND name ILIKE $%d", argCount)
			args = append(args, "%"+filters.SearchTerm+"%")
			argCount++
		}
	}

	query += " ORDER BY name ASC"

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) GetCategory(ctx context.Context, id uuid.UUID) (*model.ServiceCategory, error) {
	query := `
		SELECT id, name, requires_removal_prompt, created_at, updated_at
		FROM service_categories
		WHERE id = $1
	`
	var category model.ServiceCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *serviceRepository) ListCategories(ctx context.Context) ([]*model.ServiceCategory, error) {
	query := `
		SELECT id, name, requires_removal_prompt, created_at, updated_at
		FROM service_categories
		ORDER BY name ASC
	`
	var categories []*model.ServiceCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *serviceRepository) ListConflictingCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT DISTINCT conflicting_category_id
		FROM category_conflicts
		WHERE category_id = ANY($1)
	`
	var conflicting []uuid.UUID
	if err := r.db.SelectContext(ctx, &conflicting, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list conflicting categories: %w", err)
	}
	return conflicting, nil
}
