package ports

import (
	"context"

	"github.com/emiliopalmerini/formab/internal/domain"
)

// TestRepository persists tests. Lookups return (nil, nil) when nothing matches.
type TestRepository interface {
	// Create stores the test and its variants atomically.
	Create(ctx context.Context, test *domain.Test, variants []domain.Variant) error
	GetByID(ctx context.Context, id string) (*domain.Test, error)
	List(ctx context.Context) ([]*domain.Test, error)
	ListActiveByForm(ctx context.Context, formName string) ([]*domain.Test, error)
	GetActiveByField(ctx context.Context, formName, fieldName string) (*domain.Test, error)
	// UpdateStatus reports whether a row was updated.
	UpdateStatus(ctx context.Context, id string, status domain.TestStatus) (bool, error)
}

type VariantRepository interface {
	// ListByTestID returns variants in creation order.
	ListByTestID(ctx context.Context, testID string) ([]domain.Variant, error)
}

type AssignmentRepository interface {
	Get(ctx context.Context, testID, sessionID string) (*domain.Assignment, error)
	// Create returns domain.ErrDuplicateAssignment when the session already has one.
	Create(ctx context.Context, assignment *domain.Assignment) error
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	// CountByVariant returns the tallies of a test keyed by variant id.
	CountByVariant(ctx context.Context, testID string) (map[string]domain.EventCounts, error)
}
