package otel

import "context"

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordAssignment(ctx context.Context, testID, variantID string, created bool) {}

func (e *NoOpExporter) RecordEvent(ctx context.Context, testID, eventType string) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
