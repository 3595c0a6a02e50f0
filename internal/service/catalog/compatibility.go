package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/service/scheduling"
)

var _ scheduling.CompatibilityChecker = (*Service)(nil)

// IncompatibleCategories returns the category IDs that cannot be combined
// with the given selection in a single plan.
func (s *Service) IncompatibleCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	conflicting, err := s.services.ListConflictingCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicting categories: %w", err)
	}
	return conflicting, nil
}

// IncompatibleAddOns returns the subset of the given add-ons that are not
// currently selectable.
func (s *Service) IncompatibleAddOns(ctx context.Context, addOnIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, id := range addOnIDs {
		addOn, err := s.addOns.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get add-on %s: %w", id, err)
		}
		if !addOn.IsActive {
			out = append(out, id)
		}
	}
	return out, nil
}
