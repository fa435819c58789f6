package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/infrastructure/config"
)

func TestExporter_RecordsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	exp, err := newExporter(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	ctx := context.Background()
	exp.RecordAssignment(ctx, "t1", "v1", true)
	exp.RecordAssignment(ctx, "t1", "v1", false)
	exp.RecordEvent(ctx, "t1", "impression")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", m.Name)
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), totals["formab_assignments_total"])
	assert.Equal(t, int64(1), totals["formab_events_total"])
	require.NoError(t, exp.Close(ctx))
}

func TestNewMetricsExporter_DisabledFallsBackToNoOp(t *testing.T) {
	exp := NewMetricsExporter(context.Background(), ConfigFrom(config.OTel{Enabled: false}), zap.NewNop())
	_, ok := exp.(*NoOpExporter)
	assert.True(t, ok)

	exp = NewMetricsExporter(context.Background(), ConfigFrom(config.OTel{Enabled: true}), zap.NewNop())
	_, ok = exp.(*NoOpExporter)
	assert.True(t, ok, "missing endpoint disables export")
}

func TestNewExporter_RequiresEndpoint(t *testing.T) {
	_, err := NewExporter(context.Background(), Config{Enabled: true})
	assert.Error(t, err)
}
