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

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	query := `
		INSERT INTO customers (
			id, first_name, last_name, email, phone, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	customer.ID = uuid.New()
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Notes,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, notes, created_at, updated_at
		FROM customers
		WHERE id = $1 AND deleted_at IS NULL
	`
	var customer model.Customer
	if err := r.db.GetContext(ctx, &customer, query, id); err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4, notes = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	customer.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Notes,
		customer.UpdatedAt,
		customer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("customer not found")
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE customers SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("customer not found")
	}
	return nil
}

func (r *customerRepository) List(ctx context.Context, filters *model.CustomerFilters) ([]*model.Customer, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, notes, created_at, updated_at
		FROM customers
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}

	if filters != nil && filters.SearchTerm != "" {
		query += " AND (first_name ILIKE $1 OR last_name ILIKE $1 OR phone ILIKE $1)"
		args = append(args, "%"+filters.SearchTerm+"%")
	}

	query += " ORDER BY first_name, last_name"

	var customers []*model.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
