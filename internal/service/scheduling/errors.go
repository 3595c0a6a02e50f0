package scheduling

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrStaffUnassigned is returned when a scheduling operation requires
	// every service line to carry a concrete staff member and one does not.
	ErrStaffUnassigned = errors.New("every service line must have an assigned staff member")

	// ErrNoStaffAvailable is returned when auto-assignment cannot find a
	// bookable staff member.
	ErrNoStaffAvailable = errors.New("no active and available staff member")

	// ErrEmptyPlan is returned when a plan is built or verified with no
	// service lines.
	ErrEmptyPlan = errors.New("booking plan has no service lines")

	// ErrSharedStaff is returned when a simultaneous plan puts the same
	// staff member on more than one line. Parallel lines occupy the same
	// window, so each needs its own staff member.
	ErrSharedStaff = errors.New("simultaneous services need a different staff member per line")
)

// ConflictError reports a detected double-booking: which service/staff
// pair overlapped an existing booking. Verification fails fast on the
// first conflict found.
type ConflictError struct {
	ServiceID   uuid.UUID
	ServiceName string
	StaffID     uuid.UUID
	BookingID   uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("service %q conflicts with an existing booking for staff %s", e.ServiceName, e.StaffID)
}

// IsConflict reports whether err is a scheduling conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
