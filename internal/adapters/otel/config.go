package otel

import (
	"context"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/infrastructure/config"
	"github.com/emiliopalmerini/formab/internal/ports"
)

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// ConfigFrom maps the process settings onto the exporter configuration.
func ConfigFrom(cfg config.OTel) Config {
	return Config{
		Endpoint: cfg.Endpoint,
		Enabled:  cfg.Enabled,
		Insecure: cfg.Insecure,
	}
}

// NewMetricsExporter returns a live exporter when configured and a no-op one
// otherwise, so a missing collector never blocks startup.
func NewMetricsExporter(ctx context.Context, cfg Config, logger *zap.Logger) ports.MetricsExporter {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return NewNoOpExporter()
	}

	exp, err := NewExporter(ctx, cfg)
	if err != nil {
		logger.Warn("otel exporter unavailable, metrics disabled", zap.Error(err))
		return NewNoOpExporter()
	}
	logger.Info("otel metrics enabled", zap.String("endpoint", cfg.Endpoint))
	return exp
}
