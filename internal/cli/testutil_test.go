package cli

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/tursodatabase/go-libsql"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/migrate"
)

// testDB creates an in-memory SQLite database with all migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := migrate.RunAll(context.Background(), db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// testApp wires an AppContext over an in-memory database.
func testApp(t *testing.T) *AppContext {
	t.Helper()
	return newAppContext(testDB(t), nil, zap.NewNop())
}
