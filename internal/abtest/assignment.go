package abtest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/domain"
)

// VariantAssignment is the answer to "which variant does this session see".
// HasTest is false when no active test targets the field.
type VariantAssignment struct {
	HasTest bool
	TestID  string
	Variant *domain.Variant
}

// GetOrCreateAssignment returns the session's existing assignment or draws a
// weighted variant and persists it. Losing an insert race returns the winner.
func (s *Service) GetOrCreateAssignment(ctx context.Context, testID, sessionID string, variants []domain.Variant) (*domain.Assignment, error) {
	if len(variants) == 0 {
		return nil, domain.ErrNoVariants
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.NewValidationError("Session id is required")
	}

	existing, err := s.assignments.Get(ctx, testID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up assignment: %w", err)
	}
	if existing != nil {
		s.metrics.RecordAssignment(ctx, testID, existing.VariantID, false)
		return existing, nil
	}

	chosen, err := s.pickVariant(variants)
	if err != nil {
		return nil, err
	}

	a := &domain.Assignment{
		ID:        s.newID(),
		TestID:    testID,
		SessionID: sessionID,
		VariantID: chosen.ID,
		CreatedAt: s.now(),
	}
	if err := s.assignments.Create(ctx, a); err != nil {
		if !errors.Is(err, domain.ErrDuplicateAssignment) {
			return nil, fmt.Errorf("failed to create assignment: %w", err)
		}

		winner, err := s.assignments.Get(ctx, testID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-fetch assignment: %w", err)
		}
		if winner == nil {
			return nil, fmt.Errorf("assignment for session %s vanished after conflict", sessionID)
		}
		s.logger.Debug("assignment race resolved",
			zap.String("test_id", testID),
			zap.String("session_id", sessionID),
			zap.String("variant_id", winner.VariantID),
		)
		s.metrics.RecordAssignment(ctx, testID, winner.VariantID, false)
		return winner, nil
	}

	s.metrics.RecordAssignment(ctx, testID, a.VariantID, true)
	return a, nil
}

// pickVariant draws r in [0, total) and returns the first variant whose
// cumulative weight exceeds r. Zero-weight variants are never chosen.
func (s *Service) pickVariant(variants []domain.Variant) (domain.Variant, error) {
	total := 0
	for _, v := range variants {
		if v.TrafficWeight > 0 {
			total += v.TrafficWeight
		}
	}
	if total == 0 {
		return domain.Variant{}, fmt.Errorf("%w: total traffic weight is zero", domain.ErrNoVariants)
	}

	r := s.intN(total)
	cumulative := 0
	for _, v := range variants {
		if v.TrafficWeight <= 0 {
			continue
		}
		cumulative += v.TrafficWeight
		if r < cumulative {
			return v, nil
		}
	}
	return variants[len(variants)-1], nil
}

// GetActiveTestsForForm lists the active tests on a form. A store failure is
// logged and reads as no tests.
func (s *Service) GetActiveTestsForForm(ctx context.Context, formName string) []*domain.Test {
	tests, err := s.tests.ListActiveByForm(ctx, formName)
	if err != nil {
		s.logger.Warn("listing active tests failed", zap.String("form", formName), zap.Error(err))
		return []*domain.Test{}
	}
	if tests == nil {
		return []*domain.Test{}
	}
	return tests
}

// GetVariantAssignment resolves the active test on a field and the session's
// variant in it. Every failure degrades to "no test" so forms always render.
func (s *Service) GetVariantAssignment(ctx context.Context, formName, fieldName, sessionID string) VariantAssignment {
	log := s.logger.With(
		zap.String("form", formName),
		zap.String("field", fieldName),
		zap.String("session_id", sessionID),
	)

	test, err := s.tests.GetActiveByField(ctx, formName, fieldName)
	if err != nil {
		log.Warn("finding active test failed", zap.Error(err))
		return VariantAssignment{}
	}
	if test == nil {
		return VariantAssignment{}
	}

	variants, err := s.variants.ListByTestID(ctx, test.ID)
	if err != nil {
		log.Warn("loading variants failed", zap.String("test_id", test.ID), zap.Error(err))
		return VariantAssignment{}
	}
	if len(variants) == 0 {
		return VariantAssignment{}
	}

	a, err := s.GetOrCreateAssignment(ctx, test.ID, sessionID, variants)
	if err != nil {
		log.Warn("assignment failed", zap.String("test_id", test.ID), zap.Error(err))
		return VariantAssignment{}
	}

	v, ok := domain.FindVariant(variants, a.VariantID)
	if !ok {
		log.Warn("assigned variant no longer exists",
			zap.String("test_id", test.ID),
			zap.String("variant_id", a.VariantID),
		)
		return VariantAssignment{}
	}
	return VariantAssignment{HasTest: true, TestID: test.ID, Variant: &v}
}
