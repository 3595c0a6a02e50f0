package booking

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RollbackError reports a failed plan submission whose compensating
// deletes did not all succeed. OrphanedIDs lists bookings that were
// created but could not be removed and need manual cleanup.
type RollbackError struct {
	Cause       error
	OrphanedIDs []uuid.UUID
}

func (e *RollbackError) Error() string {
	ids := make([]string, 0, len(e.OrphanedIDs))
	for _, id := range e.OrphanedIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("plan submission failed and rollback left orphaned bookings [%s]: %v",
		strings.Join(ids, ", "), e.Cause)
}

func (e *RollbackError) Unwrap() error {
	return e.Cause
}
