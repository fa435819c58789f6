package turso_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/formab/internal/adapters/turso"
	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "formab.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	ctx := context.Background()
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// seedTest stores a 50/50 control/treatment test and returns it with its variants.
func seedTest(t *testing.T, repos *turso.Repositories, id, form, field string, status domain.TestStatus) (*domain.Test, []domain.Variant) {
	t.Helper()

	label := "Phone number"
	test := &domain.Test{
		ID:                id,
		Name:              "Test " + id,
		FormName:          form,
		FieldName:         field,
		Status:            status,
		TrafficAllocation: 100,
		CreatedAt:         fixedTime,
		UpdatedAt:         fixedTime,
	}
	variants := []domain.Variant{
		{ID: id + "-control", TestID: id, Name: "Control", IsControl: true, TrafficWeight: 50, Position: 0, CreatedAt: fixedTime},
		{ID: id + "-a", TestID: id, Name: "VariantA", TrafficWeight: 50, Position: 1, CreatedAt: fixedTime,
			Overrides: domain.FieldOverrides{Label: &label, Required: true}},
	}
	if err := repos.Tests.Create(context.Background(), test, variants); err != nil {
		t.Fatalf("seed test %s: %v", id, err)
	}
	return test, variants
}
