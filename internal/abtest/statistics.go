package abtest

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/formab/internal/domain"
)

// GetTestStatistics reports per-variant rates and a z-test of each treatment
// against the control. Unknown ids return domain.ErrTestNotFound.
func (s *Service) GetTestStatistics(ctx context.Context, testID string) (*domain.TestStatistics, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test: %w", err)
	}
	if test == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTestNotFound, testID)
	}

	variants, err := s.variants.ListByTestID(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	set, err := domain.NewVariantSet(variants)
	if err != nil {
		return nil, fmt.Errorf("%w: test %s: %w", domain.ErrCorruptTest, testID, err)
	}

	counts, err := s.events.CountByVariant(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	return domain.BuildStatistics(*test, set, counts), nil
}
