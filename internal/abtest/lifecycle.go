package abtest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/domain"
)

// TestDetails is a test with its variants in creation order.
type TestDetails struct {
	Test     *domain.Test
	Variants []domain.Variant
}

// CreateTest validates the input and stores the test with its variants in one
// write. Status defaults to draft.
func (s *Service) CreateTest(ctx context.Context, in domain.NewTest) (*domain.Test, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if status == domain.StatusActive {
		if err := s.checkActiveSlot(ctx, in.FormName, in.FieldName, ""); err != nil {
			return nil, err
		}
	}

	now := s.now()
	test := &domain.Test{
		ID:                s.newID(),
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		FormName:          in.FormName,
		FieldName:         in.FieldName,
		Status:            status,
		TrafficAllocation: in.TrafficAllocation,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	variants := make([]domain.Variant, len(in.Variants))
	for i, nv := range in.Variants {
		variants[i] = domain.Variant{
			ID:            s.newID(),
			TestID:        test.ID,
			Name:          strings.TrimSpace(nv.Name),
			IsControl:     nv.IsControl,
			TrafficWeight: nv.TrafficWeight,
			Overrides:     nv.Overrides,
			Position:      i,
			CreatedAt:     now,
		}
	}

	if err := s.tests.Create(ctx, test, variants); err != nil {
		return nil, err
	}

	s.logger.Info("test created",
		zap.String("test_id", test.ID),
		zap.String("form", test.FormName),
		zap.String("field", test.FieldName),
		zap.String("status", string(test.Status)),
		zap.Int("variants", len(variants)),
	)
	return test, nil
}

// UpdateTestStatus moves a test to any valid status. Activating fails with
// domain.ErrActiveTestConflict when another test is active on the field.
func (s *Service) UpdateTestStatus(ctx context.Context, testID string, status domain.TestStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return fmt.Errorf("failed to load test: %w", err)
	}
	if test == nil {
		return fmt.Errorf("%w: %s", domain.ErrTestNotFound, testID)
	}

	if status == domain.StatusActive && test.Status != domain.StatusActive {
		if err := s.checkActiveSlot(ctx, test.FormName, test.FieldName, test.ID); err != nil {
			return err
		}
	}

	ok, err := s.tests.UpdateStatus(ctx, testID, status)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTestNotFound, testID)
	}

	s.logger.Info("test status changed",
		zap.String("test_id", testID),
		zap.String("from", string(test.Status)),
		zap.String("to", string(status)),
	)
	return nil
}

// checkActiveSlot fails when a test other than exceptID is active on the field.
// The partial unique index still guards the write against races.
func (s *Service) checkActiveSlot(ctx context.Context, formName, fieldName, exceptID string) error {
	active, err := s.tests.GetActiveByField(ctx, formName, fieldName)
	if err != nil {
		return fmt.Errorf("failed to check active tests: %w", err)
	}
	if active != nil && active.ID != exceptID {
		return fmt.Errorf("%w: %s.%s is targeted by %q", domain.ErrActiveTestConflict, formName, fieldName, active.Name)
	}
	return nil
}

// ListTests returns every test, newest first. A store failure reads as none.
func (s *Service) ListTests(ctx context.Context) []*domain.Test {
	tests, err := s.tests.List(ctx)
	if err != nil {
		s.logger.Warn("listing tests failed", zap.Error(err))
		return []*domain.Test{}
	}
	if tests == nil {
		return []*domain.Test{}
	}
	return tests
}

func (s *Service) GetTestDetails(ctx context.Context, testID string) (*TestDetails, error) {
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
	return &TestDetails{Test: test, Variants: variants}, nil
}
