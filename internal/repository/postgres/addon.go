package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
)

type addOnRepository struct {
	db *sqlx.DB
}

func NewAddOnRepository(db *sqlx.DB) repository.AddOnRepository {
	return &addOnRepository{db: db}
}

const addOnColumns = `
	id, name, price, additional_time, is_active, removal,
	compatible_service_ids, created_at, updated_at
`

func (r *addOnRepository) Create(ctx context.Context, addOn *model.AddOn) error {
	query := `
		INSERT INTO addons (
			id, name, price, additional_time, is_active, removal,
			compatible_service_ids, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	addOn.ID = uuid.New()
	addOn.CreatedAt = time.Now()
	addOn.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		addOn.ID,
		addOn.Name,
		addOn.Price,
		addOn.AdditionalTime,
		addOn.IsActive,
		addOn.Removal,
		addOn.CompatibleServiceIDs,
		addOn.CreatedAt,
		addOn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create add-on: %w", err)
	}
	return nil
}

func (r *addOnRepository) Get(ctx context.Context, id uuid.UUID) (*model.AddOn, error) {
	query := `SELECT ` + addOnColumns + ` FROM addons WHERE id = $1`

	var addOn model.AddOn
	if err := r.db.GetContext(ctx, &addOn, query, id); err != nil {
		return nil, fmt.Errorf("failed to get add-on: %w", err)
	}
	return &addOn, nil
}

func (r *addOnRepository) Update(ctx context.Context, addOn *model.AddOn) error {
	query := `
		UPDATE addons
		SET name = $1, price = $2, additional_time = $3, is_active = $4,
			compatible_service_ids = $5, updated_at = $6
		WHERE id = $7
	`
	addOn.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		addOn.Name,
		addOn.Price,
		addOn.AdditionalTime,
		addOn.IsActive,
		addOn.CompatibleServiceIDs,
		addOn.UpdatedAt,
		addOn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update add-on: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("add-on not found")
	}
	return nil
}

func (r *addOnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM addons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete add-on: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("add-on not found")
	}
	return nil
}

func (r *addOnRepository) List(ctx context.Context, filters *model.AddOnFilters) ([]*model.AddOn, error) {
	query := `SELECT ` + addOnColumns + ` FROM addons WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Removal != nil {
			query += fmt.Sprintf(" AND removal = $%d", argCount)
			args = append(args, *filters.Removal)
			argCount++
		}
		if filters.ActiveOnly {
			query += " AND is_active = true"
		}
		if filters.ServiceID != uuid.Nil {
			query += fmt.Sprintf(" AND (compatible_service_ids IS NULL OR cardinality(compatible_service_ids) = 0 OR $%d = ANY(compatible_service_ids))", argCount)
			args = append(args, filters.ServiceID.String())
			argCount++
		}
	}

	query += " ORDER BY name ASC"

	var addOns []*model.AddOn
	if err := r.db.SelectContext(ctx, &addOns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}
	return addOns, nil
}
