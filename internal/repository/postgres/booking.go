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

type bookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `
	id, service_id, customer_id, staff_id, appointment_date,
	start_time, end_time, duration, addon_ids, status,
	total_price, notes, from_web, created_at, updated_at
`

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, service_id, customer_id, staff_id, appointment_date,
			start_time, end_time, duration, addon_ids, status,
			total_price, notes, from_web, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.ServiceID,
		booking.CustomerID,
		booking.StaffID,
		booking.AppointmentDate,
		booking.StartTime,
		booking.EndTime,
		booking.Duration,
		booking.AddOnIDs,
		booking.Status,
		booking.TotalPrice,
		booking.Notes,
		booking.FromWeb,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET staff_id = $1, start_time = $2, end_time = $3, duration = $4,
			status = $5, total_price = $6, notes = $7, updated_at = $8
		WHERE id = $9
	`
	booking.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		booking.StaffID,
		booking.StartTime,
		booking.EndTime,
		booking.Duration,
		booking.Status,
		booking.TotalPrice,
		booking.Notes,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}
	return nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.StaffID != uuid.Nil {
		query += fmt.Sprintf(" AND staff_id = $%d", argCount)
		args = append(args, filters.StaffID)
		argCount++
	}
	if filters.CustomerID != uuid.Nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argCount)
		args = append(args, filters.CustomerID)
		argCount++
	}
	if filters.ServiceID != uuid.Nil {
		query += fmt.Sprintf(" AND service_id = $%d", argCount)
		args = append(args, filters.ServiceID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND appointment_date >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}
	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND appointment_date <= $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListForStaffOnDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE staff_id = $1
		AND appointment_date::date = $2::date
		AND status != 'cancelled'
		ORDER BY start_time ASC
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, staffID, date); err != nil {
		return nil, fmt.Errorf("failed to list staff bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListForDate(ctx context.Context, date time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE appointment_date::date = $1::date
		AND status != 'cancelled'
		ORDER BY start_time ASC
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, date); err != nil {
		return nil, fmt.Errorf("failed to list bookings for date: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) CheckConflicts(ctx context.Context, staffID uuid.UUID, startTime, endTime time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE staff_id = $1
			AND status != 'cancelled'
			AND start_time < $3
			AND end_time > $2
	`
	args := []interface{}{staffID, startTime, endTime}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}
	query += ")"

	var hasConflict bool
	if err := r.db.GetContext(ctx, &hasConflict, query, args...); err != nil {
		return false, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return hasConflict, nil
}
