package cli

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/abtest"
	"github.com/emiliopalmerini/formab/internal/adapters/otel"
	"github.com/emiliopalmerini/formab/internal/adapters/turso"
	"github.com/emiliopalmerini/formab/internal/infrastructure/config"
	"github.com/emiliopalmerini/formab/internal/logging"
	"github.com/emiliopalmerini/formab/internal/ports"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config  *config.Config
	DB      *turso.DB
	Repos   *turso.Repositories
	Metrics ports.MetricsExporter
	Logger  *zap.Logger
	Service *abtest.Service
}

// NewAppContext loads configuration and opens every dependency.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := turso.NewDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	metrics := otel.NewMetricsExporter(ctx, otel.ConfigFrom(cfg.OTel), logger)
	app := newAppContext(db.DB, metrics, logger)
	app.Config = cfg
	app.DB = db
	return app, nil
}

func newAppContext(db *sql.DB, metrics ports.MetricsExporter, logger *zap.Logger) *AppContext {
	repos := turso.NewRepositories(db)
	return &AppContext{
		Repos:   repos,
		Metrics: metrics,
		Logger:  logger,
		Service: abtest.NewService(repos.Tests, repos.Variants, repos.Assignments, repos.Events,
			abtest.WithLogger(logger),
			abtest.WithMetrics(metrics),
		),
	}
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	if a.Metrics != nil {
		if err := a.Metrics.Close(ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("flushing metrics failed", zap.Error(err))
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
