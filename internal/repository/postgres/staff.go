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

type staffRepository struct {
	db *sqlx.DB
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `
	id, first_name, last_name, email, phone, is_active, is_available,
	created_at, updated_at
`

func (r *staffRepository) Create(ctx context.Context, staff *model.StaffMember) error {
	query := `
		INSERT INTO staff_members (
			id, first_name, last_name, email, phone, is_active, is_available,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	staff.ID = uuid.New()
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.Phone,
		staff.IsActive,
		staff.IsAvailable,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id = $1 AND deleted_at IS NULL`

	var staff model.StaffMember
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.StaffMember) error {
	query := `
		UPDATE staff_members
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			is_active = $5, is_available = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	staff.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.Phone,
		staff.IsActive,
		staff.IsAvailable,
		staff.UpdatedAt,
		staff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("staff member not found")
	}
	return nil
}

func (r *staffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE staff_members SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete staff member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("staff member not found")
	}
	return nil
}

func (r *staffRepository) List(ctx context.Context) ([]*model.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE deleted_at IS NULL ORDER BY first_name, last_name`

	var staff []*model.StaffMember
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func (r *staffRepository) ListBookable(ctx context.Context) ([]*model.StaffMember, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff_members
		WHERE deleted_at IS NULL AND is_active = true AND is_available = true
		ORDER BY first_name, last_name
	`
	var staff []*model.StaffMember
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("failed to list bookable staff: %w", err)
	}
	return staff, nil
}
