package ports

import "context"

// MetricsExporter exports engine activity to an external observability system.
type MetricsExporter interface {
	// RecordAssignment counts an assignment lookup; created is false for sticky hits.
	RecordAssignment(ctx context.Context, testID, variantID string, created bool)
	// RecordEvent counts a tracked interaction event.
	RecordEvent(ctx context.Context, testID string, eventType string)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
