package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/util"
	sqlc "github.com/emiliopalmerini/formab/sqlc/generated"
)

// timeNow is swapped in tests that need fixed update timestamps.
var timeNow = func() time.Time { return time.Now().UTC() }

type AssignmentRepository struct {
	db      *sql.DB
	queries *sqlc.Queries
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *AssignmentRepository) Get(ctx context.Context, testID, sessionID string) (*domain.Assignment, error) {
	row, err := WithRetry(ctx, defaultRetries, func() (sqlc.AbTestAssignment, error) {
		return r.queries.GetAbTestAssignment(ctx, sqlc.GetAbTestAssignmentParams{
			TestID:    testID,
			SessionID: sessionID,
		})
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &domain.Assignment{
		ID:        row.ID,
		TestID:    row.TestID,
		SessionID: row.SessionID,
		VariantID: row.VariantID,
		CreatedAt: util.ParseTimeRFC3339(row.CreatedAt),
	}, nil
}

func (r *AssignmentRepository) Create(ctx context.Context, a *domain.Assignment) error {
	err := r.queries.CreateAbTestAssignment(ctx, sqlc.CreateAbTestAssignmentParams{
		ID:        a.ID,
		TestID:    a.TestID,
		SessionID: a.SessionID,
		VariantID: a.VariantID,
		CreatedAt: util.FormatTimestamp(a.CreatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateAssignment, a.SessionID)
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}
