package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/formab/migrations"
)

// Migration represents a single database migration with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// ErrDirty is returned when a previous migration stopped halfway.
var ErrDirty = errors.New("database is in dirty state")

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Migrator applies numbered migrations and tracks the schema version in
// schema_migrations.
type Migrator struct {
	db     *sql.DB
	source fs.FS
	out    io.Writer
}

type Option func(*Migrator)

// WithSource reads migrations from fsys instead of the embedded files.
func WithSource(fsys fs.FS) Option {
	return func(m *Migrator) { m.source = fsys }
}

// WithOutput reports each applied step to w.
func WithOutput(w io.Writer) Option {
	return func(m *Migrator) { m.out = w }
}

func New(db *sql.DB, opts ...Option) *Migrator {
	m := &Migrator{db: db, source: migrations.FS, out: io.Discard}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunAll applies every pending embedded migration silently.
func RunAll(ctx context.Context, db *sql.DB) error {
	_, err := New(db).Up(ctx)
	return err
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// Version returns the current schema version and whether it is dirty.
func (m *Migrator) Version(ctx context.Context) (int, bool, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, false, err
	}

	var version, dirty int
	err := m.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, dirty == 1, nil
}

func (m *Migrator) setVersion(ctx context.Context, version int, dirty bool) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version <= 0 && !dirty {
		return nil
	}
	d := 0
	if dirty {
		d = 1
	}
	_, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, d)
	return err
}

// Load reads the NNN_name.up.sql files and their optional .down.sql pairs,
// sorted by version.
func (m *Migrator) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(m.source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var result []Migration
	seen := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		matches := upPattern.FindStringSubmatch(e.Name())
		if matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", e.Name(), err)
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", version, prev, e.Name())
		}
		seen[version] = e.Name()

		upSQL, err := fs.ReadFile(m.source, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		downName := path.Join(".", matches[1]+"_"+matches[2]+".down.sql")
		downSQL, err := fs.ReadFile(m.source, downName)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", downName, err)
		}

		result = append(result, Migration{
			Version: version,
			Name:    matches[2],
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

// Up applies every pending migration and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	all, current, err := m.prepare(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range all {
		if mig.Version <= current {
			continue
		}
		if err := m.run(ctx, mig, true); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// To migrates up or down until the schema is at target.
func (m *Migrator) To(ctx context.Context, target int) error {
	if target < 0 {
		return fmt.Errorf("invalid target version %d", target)
	}
	all, current, err := m.prepare(ctx)
	if err != nil {
		return err
	}

	switch {
	case target > current:
		if len(all) == 0 || all[len(all)-1].Version < target {
			return fmt.Errorf("no migration with version %d", target)
		}
		for _, mig := range all {
			if mig.Version <= current || mig.Version > target {
				continue
			}
			if err := m.run(ctx, mig, true); err != nil {
				return err
			}
		}
	case target < current:
		for i := len(all) - 1; i >= 0; i-- {
			mig := all[i]
			if mig.Version > current || mig.Version <= target {
				continue
			}
			if mig.DownSQL == "" {
				return fmt.Errorf("no down migration for version %d", mig.Version)
			}
			if err := m.run(ctx, mig, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Migrator) prepare(ctx context.Context) ([]Migration, int, error) {
	current, dirty, err := m.Version(ctx)
	if err != nil {
		return nil, 0, err
	}
	if dirty {
		return nil, current, fmt.Errorf("%w at version %d", ErrDirty, current)
	}
	all, err := m.Load()
	if err != nil {
		return nil, current, err
	}
	return all, current, nil
}

// run executes one migration. The version is marked dirty until every
// statement succeeds.
func (m *Migrator) run(ctx context.Context, mig Migration, up bool) error {
	direction, body, after := "up", mig.UpSQL, mig.Version
	if !up {
		direction, body, after = "down", mig.DownSQL, mig.Version-1
	}
	fmt.Fprintf(m.out, "  %s %03d_%s\n", direction, mig.Version, mig.Name)

	if err := m.setVersion(ctx, mig.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}
	for _, stmt := range SplitSQL(body) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w\nSQL: %s", mig.Version, direction, err, stmt)
		}
	}
	if err := m.setVersion(ctx, after, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

// SplitSQL splits a script into statements on semicolons, dropping line
// comments and empty statements.
func SplitSQL(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
