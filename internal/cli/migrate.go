package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/formab/internal/adapters/turso"
	"github.com/emiliopalmerini/formab/internal/infrastructure/config"
	"github.com/emiliopalmerini/formab/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  formab migrate      # Run all pending migrations
  formab migrate 1    # Migrate to version 1
  formab migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := turso.NewDB(*dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	target := -1
	if len(args) == 1 {
		target, err = strconv.Atoi(args[0])
		if err != nil || target < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
	}
	return migrateTo(ctx, db, target)
}

// migrateTo applies pending migrations, or moves to target when it is not -1.
func migrateTo(ctx context.Context, db *turso.DB, target int) error {
	m := migrate.New(db.DB, migrate.WithOutput(os.Stdout))

	current, _, err := m.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Current version: %d\n", current)

	if target < 0 {
		applied, err := m.Up(ctx)
		if err != nil {
			return err
		}
		if applied == 0 {
			fmt.Println("No migrations to run")
			return nil
		}
		fmt.Printf("Applied %d migrations\n", applied)
		return nil
	}

	if target == current {
		fmt.Println("Already at target version")
		return nil
	}
	if err := m.To(ctx, target); err != nil {
		return err
	}
	fmt.Printf("Migrated to version %d\n", target)
	return nil
}
