package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/util"
	sqlc "github.com/emiliopalmerini/formab/sqlc/generated"
)

type TestRepository struct {
	db      *sql.DB
	queries *sqlc.Queries
}

func NewTestRepository(db *sql.DB) *TestRepository {
	return &TestRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *TestRepository) Create(ctx context.Context, test *domain.Test, variants []domain.Variant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	err = qtx.CreateAbTest(ctx, sqlc.CreateAbTestParams{
		ID:                test.ID,
		Name:              test.Name,
		Description:       util.NullStringPtr(test.Description),
		FormName:          test.FormName,
		FieldName:         test.FieldName,
		Status:            string(test.Status),
		TrafficAllocation: int64(test.TrafficAllocation),
		CreatedAt:         util.FormatTimestamp(test.CreatedAt),
		UpdatedAt:         util.FormatTimestamp(test.UpdatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create test: %w", activeConflict(err))
	}

	for _, v := range variants {
		err := qtx.CreateAbTestVariant(ctx, sqlc.CreateAbTestVariantParams{
			ID:            v.ID,
			TestID:        test.ID,
			Name:          v.Name,
			IsControl:     util.BoolToInt64(v.IsControl),
			TrafficWeight: int64(v.TrafficWeight),
			Label:         util.NullStringPtr(v.Overrides.Label),
			Placeholder:   util.NullStringPtr(v.Overrides.Placeholder),
			Required:      util.BoolToInt64(v.Overrides.Required),
			HelperText:    util.NullStringPtr(v.Overrides.HelperText),
			Position:      int64(v.Position),
			CreatedAt:     util.FormatTimestamp(v.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("failed to create variant %s: %w", v.Name, err)
		}
	}
	return tx.Commit()
}

func (r *TestRepository) GetByID(ctx context.Context, id string) (*domain.Test, error) {
	row, err := WithRetry(ctx, defaultRetries, func() (sqlc.AbTest, error) {
		return r.queries.GetAbTestByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return testFromRow(row), nil
}

func (r *TestRepository) List(ctx context.Context) ([]*domain.Test, error) {
	rows, err := WithRetry(ctx, defaultRetries, func() ([]sqlc.AbTest, error) {
		return r.queries.ListAbTests(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	return testsFromRows(rows), nil
}

func (r *TestRepository) ListActiveByForm(ctx context.Context, formName string) ([]*domain.Test, error) {
	rows, err := WithRetry(ctx, defaultRetries, func() ([]sqlc.AbTest, error) {
		return r.queries.ListActiveAbTestsByForm(ctx, formName)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list active tests for form %s: %w", formName, err)
	}
	return testsFromRows(rows), nil
}

func (r *TestRepository) GetActiveByField(ctx context.Context, formName, fieldName string) (*domain.Test, error) {
	row, err := WithRetry(ctx, defaultRetries, func() (sqlc.AbTest, error) {
		return r.queries.GetActiveAbTestByField(ctx, sqlc.GetActiveAbTestByFieldParams{
			FormName:  formName,
			FieldName: fieldName,
		})
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active test for %s.%s: %w", formName, fieldName, err)
	}
	return testFromRow(row), nil
}

func (r *TestRepository) UpdateStatus(ctx context.Context, id string, status domain.TestStatus) (bool, error) {
	n, err := r.queries.UpdateAbTestStatus(ctx, sqlc.UpdateAbTestStatusParams{
		Status:    string(status),
		UpdatedAt: util.FormatTimestamp(timeNow()),
		ID:        id,
	})
	if err != nil {
		return false, fmt.Errorf("failed to update test status: %w", activeConflict(err))
	}
	return n > 0, nil
}

func testsFromRows(rows []sqlc.AbTest) []*domain.Test {
	tests := make([]*domain.Test, len(rows))
	for i, row := range rows {
		tests[i] = testFromRow(row)
	}
	return tests
}

func testFromRow(row sqlc.AbTest) *domain.Test {
	return &domain.Test{
		ID:                row.ID,
		Name:              row.Name,
		Description:       util.NullStringToPtr(row.Description),
		FormName:          row.FormName,
		FieldName:         row.FieldName,
		Status:            domain.TestStatus(row.Status),
		TrafficAllocation: int(row.TrafficAllocation),
		CreatedAt:         util.ParseTimeRFC3339(row.CreatedAt),
		UpdatedAt:         util.ParseTimeRFC3339(row.UpdatedAt),
	}
}
