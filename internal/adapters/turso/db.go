package turso

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/formab/internal/infrastructure/config"
)

// DB wraps the libsql connection pool.
type DB struct {
	*sql.DB
}

// NewDB opens the database described by cfg and pings it.
func NewDB(cfg config.Database) (*DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("FORMAB_DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("libsql", connString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isRemote(cfg.URL) {
		// Turso aggressively closes idle Hrana streams, causing
		// "stream not found" errors on stale pooled connections.
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if !isRemote(cfg.URL) {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return &DB{DB: db}, nil
}

func connString(cfg config.Database) string {
	if cfg.AuthToken == "" || !isRemote(cfg.URL) {
		return cfg.URL
	}
	sep := "?"
	if strings.Contains(cfg.URL, "?") {
		sep = "&"
	}
	return cfg.URL + sep + "authToken=" + cfg.AuthToken
}

func isRemote(url string) bool {
	for _, scheme := range []string{"libsql://", "https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}
