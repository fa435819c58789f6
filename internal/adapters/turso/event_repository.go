package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/util"
	sqlc "github.com/emiliopalmerini/formab/sqlc/generated"
)

type EventRepository struct {
	db      *sql.DB
	queries *sqlc.Queries
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	err := r.queries.CreateAbTestEvent(ctx, sqlc.CreateAbTestEventParams{
		ID:        e.ID,
		TestID:    e.TestID,
		VariantID: e.VariantID,
		SessionID: e.SessionID,
		EventType: string(e.Type),
		EventData: util.NullStringPtr(e.Data),
		CreatedAt: util.FormatTimestamp(e.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// CountByVariant tallies a test's events in a single grouped query, so the
// counts of one variant come from the same snapshot.
func (r *EventRepository) CountByVariant(ctx context.Context, testID string) (map[string]domain.EventCounts, error) {
	rows, err := WithRetry(ctx, defaultRetries, func() ([]sqlc.CountAbTestEventsByVariantRow, error) {
		return r.queries.CountAbTestEventsByVariant(ctx, testID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	counts := make(map[string]domain.EventCounts)
	for _, row := range rows {
		c := counts[row.VariantID]
		c.Add(domain.EventType(row.EventType), row.EventCount)
		counts[row.VariantID] = c
	}
	return counts, nil
}
