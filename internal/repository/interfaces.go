package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
)

// All repository interfaces in one file
type (
	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		Update(ctx context.Context, booking *model.Booking) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		// ListForStaffOnDate returns the staff member's non-cancelled
		// bookings on the given day, ordered by start time.
		ListForStaffOnDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*model.Booking, error)
		ListForDate(ctx context.Context, date time.Time) ([]*model.Booking, error)
		CheckConflicts(ctx context.Context, staffID uuid.UUID, startTime, endTime time.Time, excludeID *uuid.UUID) (bool, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, error)
		GetCategory(ctx context.Context, id uuid.UUID) (*model.ServiceCategory, error)
		ListCategories(ctx context.Context) ([]*model.ServiceCategory, error)
		// ListConflictingCategories returns categories that cannot be
		// combined with any of the given ones in a single plan.
		ListConflictingCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error)
	}

	AddOnRepository interface {
		Create(ctx context.Context, addOn *model.AddOn) error
		Get(ctx context.Context, id uuid.UUID) (*model.AddOn, error)
		Update(ctx context.Context, addOn *model.AddOn) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AddOnFilters) ([]*model.AddOn, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.StaffMember) error
		Get(ctx context.Context, id uuid.UUID) (*model.StaffMember, error)
		Update(ctx context.Context, staff *model.StaffMember) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.StaffMember, error)
		ListBookable(ctx context.Context) ([]*model.StaffMember, error)
	}

	CustomerRepository interface {
		Create(ctx context.Context, customer *model.Customer) error
		Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
		Update(ctx context.Context, customer *model.Customer) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.CustomerFilters) ([]*model.Customer, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
)
