package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/util"
	sqlc "github.com/emiliopalmerini/formab/sqlc/generated"
)

type VariantRepository struct {
	db      *sql.DB
	queries *sqlc.Queries
}

func NewVariantRepository(db *sql.DB) *VariantRepository {
	return &VariantRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *VariantRepository) ListByTestID(ctx context.Context, testID string) ([]domain.Variant, error) {
	rows, err := WithRetry(ctx, defaultRetries, func() ([]sqlc.AbTestVariant, error) {
		return r.queries.ListAbTestVariantsByTestID(ctx, testID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	variants := make([]domain.Variant, len(rows))
	for i, row := range rows {
		variants[i] = domain.Variant{
			ID:            row.ID,
			TestID:        row.TestID,
			Name:          row.Name,
			IsControl:     row.IsControl == 1,
			TrafficWeight: int(row.TrafficWeight),
			Overrides: domain.FieldOverrides{
				Label:       util.NullStringToPtr(row.Label),
				Placeholder: util.NullStringToPtr(row.Placeholder),
				Required:    row.Required == 1,
				HelperText:  util.NullStringToPtr(row.HelperText),
			},
			Position:  int(row.Position),
			CreatedAt: util.ParseTimeRFC3339(row.CreatedAt),
		}
	}
	return variants, nil
}
