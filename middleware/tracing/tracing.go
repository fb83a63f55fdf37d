// Package tracing provides OpenTelemetry tracing for eventcore.
//
// Command dispatch and event store operations each get a span, so a slow
// command can be broken down into its reads, the decision, and the commit,
// and a retried command shows one append span per attempt.
//
// Basic usage:
//
//	tracer := tracing.NewTracer()
//	bus := eventcore.NewCommandBus()
//	bus.Use(tracing.CommandMiddleware(tracer))
//
//	store := eventcore.New(tracing.WrapAdapter(adapter, tracer))
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PREreview/eventcore"
	"github.com/PREreview/eventcore/adapters"
)

const (
	// TracerName is the instrumentation scope name.
	TracerName = "github.com/PREreview/eventcore"

	// DefaultServiceName is the default service name for spans.
	DefaultServiceName = "eventcore"
)

// Tracer wraps an OpenTelemetry tracer for eventcore operations.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// TracerOption configures a Tracer.
type TracerOption func(*Tracer)

// WithTracerProvider sets a custom TracerProvider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(t *Tracer) {
		t.tracer = tp.Tracer(TracerName)
	}
}

// WithServiceName sets the service name attribute for spans.
func WithServiceName(name string) TracerOption {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// NewTracer creates a Tracer backed by the global TracerProvider unless
// WithTracerProvider overrides it.
func NewTracer(opts ...TracerOption) *Tracer {
	t := &Tracer{
		tracer:      otel.Tracer(TracerName),
		serviceName: DefaultServiceName,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartSpan starts a new span with the given name.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// ServiceName returns the configured service name.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// CommandMiddleware creates bus middleware that traces command dispatch.
// Domain rejections mark the span as an error with the rejection message;
// the committed version and event count are recorded on success.
func CommandMiddleware(tracer *Tracer) eventcore.Middleware {
	return func(next eventcore.MiddlewareFunc) eventcore.MiddlewareFunc {
		return func(ctx context.Context, cmd eventcore.Command) (eventcore.CommandResult, error) {
			spanName := fmt.Sprintf("command.%s", cmd.CommandType())

			ctx, span := tracer.StartSpan(ctx, spanName,
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("eventcore.service", tracer.serviceName),
				attribute.String("eventcore.command.type", cmd.CommandType()),
				attribute.String("eventcore.resource.id", cmd.ResourceID().String()),
			)

			result, err := next(ctx, cmd)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				if eventcore.IsDomainError(err) {
					span.SetAttributes(attribute.Bool("eventcore.command.rejected", true))
				}
			} else {
				span.SetStatus(codes.Ok, "")
				span.SetAttributes(
					attribute.Int64("eventcore.result.version", result.Version),
					attribute.Int("eventcore.result.committed", result.Committed),
				)
			}

			return result, err
		}
	}
}

// AdapterMiddleware wraps an EventStoreAdapter with tracing.
type AdapterMiddleware struct {
	adapter adapters.EventStoreAdapter
	tracer  *Tracer
}

// WrapAdapter wraps an adapter with tracing.
func WrapAdapter(adapter adapters.EventStoreAdapter, tracer *Tracer) *AdapterMiddleware {
	return &AdapterMiddleware{
		adapter: adapter,
		tracer:  tracer,
	}
}

// Append commits events with tracing.
func (m *AdapterMiddleware) Append(ctx context.Context, resourceID string, events []adapters.EventRecord, expectedVersion int64) ([]adapters.StoredEvent, error) {
	ctx, span := m.tracer.StartSpan(ctx, "eventstore.append",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("eventcore.service", m.tracer.serviceName),
		attribute.String("eventcore.resource.id", resourceID),
		attribute.Int64("eventcore.expected_version", expectedVersion),
		attribute.Int("eventcore.events.count", len(events)),
	)

	if len(events) > 0 {
		eventTypes := make([]string, len(events))
		for i, e := range events {
			eventTypes[i] = e.Type
		}
		span.SetAttributes(attribute.StringSlice("eventcore.events.types", eventTypes))
	}

	stored, err := m.adapter.Append(ctx, resourceID, events, expectedVersion)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		if len(stored) > 0 {
			last := stored[len(stored)-1]
			span.SetAttributes(
				attribute.Int64("eventcore.stored.version", last.Version),
				attribute.Int64("eventcore.stored.global_position", int64(last.GlobalPosition)),
			)
		}
	}

	return stored, err
}

// Load retrieves a resource's events with tracing.
func (m *AdapterMiddleware) Load(ctx context.Context, resourceID string, fromVersion int64) ([]adapters.StoredEvent, error) {
	ctx, span := m.tracer.StartSpan(ctx, "eventstore.load",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("eventcore.service", m.tracer.serviceName),
		attribute.String("eventcore.resource.id", resourceID),
		attribute.Int64("eventcore.from_version", fromVersion),
	)

	events, err := m.adapter.Load(ctx, resourceID, fromVersion)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.Int("eventcore.events.loaded", len(events)))
	}

	return events, err
}

// LoadAll retrieves events across all resources with tracing.
func (m *AdapterMiddleware) LoadAll(ctx context.Context, fromPosition uint64, limit int) ([]adapters.StoredEvent, error) {
	ctx, span := m.tracer.StartSpan(ctx, "eventstore.load_all",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("eventcore.service", m.tracer.serviceName),
		attribute.Int64("eventcore.from_position", int64(fromPosition)),
		attribute.Int("eventcore.limit", limit),
	)

	events, err := m.adapter.LoadAll(ctx, fromPosition, limit)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.Int("eventcore.events.loaded", len(events)))
	}

	return events, err
}

// GetResourceInfo returns resource metadata with tracing.
func (m *AdapterMiddleware) GetResourceInfo(ctx context.Context, resourceID string) (*adapters.ResourceInfo, error) {
	ctx, span := m.tracer.StartSpan(ctx, "eventstore.get_resource_info",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("eventcore.service", m.tracer.serviceName),
		attribute.String("eventcore.resource.id", resourceID),
	)

	info, err := m.adapter.GetResourceInfo(ctx, resourceID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		if info != nil {
			span.SetAttributes(attribute.Int64("eventcore.resource.version", info.Version))
		}
	}

	return info, err
}

// GetLastPosition returns the last global position with tracing.
func (m *AdapterMiddleware) GetLastPosition(ctx context.Context) (uint64, error) {
	ctx, span := m.tracer.StartSpan(ctx, "eventstore.get_last_position",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(attribute.String("eventcore.service", m.tracer.serviceName))

	pos, err := m.adapter.GetLastPosition(ctx)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.Int64("eventcore.last_position", int64(pos)))
	}

	return pos, err
}

// Initialize initializes the adapter with tracing.
func (m *AdapterMiddleware) Initialize(ctx context.Context) error {
	ctx, span := m.tracer.StartSpan(ctx, "eventstore.initialize",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(attribute.String("eventcore.service", m.tracer.serviceName))

	err := m.adapter.Initialize(ctx)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// Close closes the underlying adapter.
func (m *AdapterMiddleware) Close() error {
	return m.adapter.Close()
}

// Ping checks backend connectivity if the underlying adapter supports it.
func (m *AdapterMiddleware) Ping(ctx context.Context) error {
	if hc, ok := m.adapter.(adapters.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}

// Unwrap returns the underlying adapter.
func (m *AdapterMiddleware) Unwrap() adapters.EventStoreAdapter {
	return m.adapter
}

// SpanFromContext returns the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, opts ...trace.EventOption) {
	trace.SpanFromContext(ctx).AddEvent(name, opts...)
}

// SetError records an error on the current span.
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
