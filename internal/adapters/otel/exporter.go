package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "formab"
	serviceVersion = "1.0.0"
)

// Exporter exports assignment and event counters to an OTEL Collector.
type Exporter struct {
	provider         *sdkmetric.MeterProvider
	assignmentsTotal metric.Int64Counter
	eventsTotal      metric.Int64Counter
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	assignmentsTotal, err := meter.Int64Counter(
		"formab_assignments_total",
		metric.WithDescription("Variant assignments served"),
		metric.WithUnit("{assignment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating assignments counter: %w", err)
	}

	eventsTotal, err := meter.Int64Counter(
		"formab_events_total",
		metric.WithDescription("Tracked field interaction events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	return &Exporter{
		provider:         provider,
		assignmentsTotal: assignmentsTotal,
		eventsTotal:      eventsTotal,
	}, nil
}

// RecordAssignment counts a served assignment. created is false for sticky hits.
func (e *Exporter) RecordAssignment(ctx context.Context, testID, variantID string, created bool) {
	e.assignmentsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("test_id", testID),
		attribute.String("variant_id", variantID),
		attribute.Bool("new", created),
	))
}

func (e *Exporter) RecordEvent(ctx context.Context, testID, eventType string) {
	e.eventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("test_id", testID),
		attribute.String("event_type", eventType),
	))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
