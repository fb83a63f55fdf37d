// Package metrics provides Prometheus metrics for eventcore.
//
// It covers the two surfaces worth watching in an event-sourced service:
// command dispatch (counts, durations, domain rejections) and the event
// store itself (operation latencies, committed event counts, version
// conflicts).
//
// Basic usage:
//
//	m := metrics.New(metrics.WithServiceName("prereview"))
//	m.MustRegister()
//
//	bus := eventcore.NewCommandBus()
//	bus.Use(m.CommandMiddleware())
//
//	store := eventcore.New(m.WrapAdapter(adapter))
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/PREreview/eventcore"
	"github.com/PREreview/eventcore/adapters"
)

// Metric labels.
const (
	LabelCommandType = "command_type"
	LabelEventType   = "event_type"
	LabelOperation   = "operation"
	LabelStatus      = "status"
	LabelErrorType   = "error_type"
	LabelService     = "service"
)

// Status values. A command is "rejected" when the domain refused it,
// "error" when infrastructure failed.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Operation values.
const (
	OperationAppend = "append"
	OperationLoad   = "load"
)

// Metrics holds all Prometheus collectors for eventcore.
type Metrics struct {
	namespace   string
	serviceName string

	commandsTotal    *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	commandsInFlight *prometheus.GaugeVec

	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec
	eventsCommittedTotal   *prometheus.CounterVec
	eventsLoadedTotal      *prometheus.CounterVec
	versionConflictsTotal  *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec
}

// Option configures Metrics.
type Option func(*Metrics)

// WithNamespace sets the Prometheus namespace.
func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		m.namespace = namespace
	}
}

// WithServiceName sets the service name label.
func WithServiceName(name string) Option {
	return func(m *Metrics) {
		m.serviceName = name
	}
}

// New creates a Metrics instance with default settings.
func New(opts ...Option) *Metrics {
	m := &Metrics{
		namespace:   "eventcore",
		serviceName: "unknown",
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initMetrics()
	return m
}

func (m *Metrics) initMetrics() {
	m.commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "commands_total",
			Help:      "Total number of commands processed.",
		},
		[]string{LabelService, LabelCommandType, LabelStatus},
	)

	m.commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of command processing in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelService, LabelCommandType},
	)

	m.commandsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      "commands_in_flight",
			Help:      "Number of commands currently being processed.",
		},
		[]string{LabelService, LabelCommandType},
	)

	m.storeOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "eventstore_operations_total",
			Help:      "Total number of event store operations.",
		},
		[]string{LabelService, LabelOperation, LabelStatus},
	)

	m.storeOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "eventstore_operation_duration_seconds",
			Help:      "Duration of event store operations in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelService, LabelOperation},
	)

	m.eventsCommittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "events_committed_total",
			Help:      "Total number of events committed, by type.",
		},
		[]string{LabelService, LabelEventType},
	)

	m.eventsLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "events_loaded_total",
			Help:      "Total number of events loaded from the store.",
		},
		[]string{LabelService},
	)

	m.versionConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "version_conflicts_total",
			Help:      "Total number of commits rejected by the version check.",
		},
		[]string{LabelService},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by type.",
		},
		[]string{LabelService, LabelErrorType},
	)
}

// Collectors returns all Prometheus collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.commandsTotal,
		m.commandDuration,
		m.commandsInFlight,
		m.storeOperationsTotal,
		m.storeOperationDuration,
		m.eventsCommittedTotal,
		m.eventsLoadedTotal,
		m.versionConflictsTotal,
		m.errorsTotal,
	}
}

// MustRegister registers all collectors with the default registry.
// Panics if registration fails.
func (m *Metrics) MustRegister() {
	prometheus.MustRegister(m.Collectors()...)
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(registry prometheus.Registerer) error {
	for _, collector := range m.Collectors() {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// CommandMiddleware returns bus middleware that records command metrics.
// Domain rejections are counted separately from infrastructure errors so
// a burst of user mistakes does not look like an outage.
func (m *Metrics) CommandMiddleware() eventcore.Middleware {
	return func(next eventcore.MiddlewareFunc) eventcore.MiddlewareFunc {
		return func(ctx context.Context, cmd eventcore.Command) (eventcore.CommandResult, error) {
			cmdType := cmd.CommandType()

			m.commandsInFlight.WithLabelValues(m.serviceName, cmdType).Inc()
			defer m.commandsInFlight.WithLabelValues(m.serviceName, cmdType).Dec()

			start := time.Now()
			result, err := next(ctx, cmd)
			duration := time.Since(start)

			m.commandDuration.WithLabelValues(m.serviceName, cmdType).Observe(duration.Seconds())

			status := StatusSuccess
			if err != nil {
				if eventcore.IsDomainError(err) {
					status = StatusRejected
				} else {
					status = StatusError
				}
				m.errorsTotal.WithLabelValues(m.serviceName, errorTypeName(err)).Inc()
			}

			m.commandsTotal.WithLabelValues(m.serviceName, cmdType, status).Inc()

			return result, err
		}
	}
}

// errorTypeName buckets an error by its sentinel.
func errorTypeName(err error) string {
	var exhausted *eventcore.RetriesExhaustedError
	var notFound *eventcore.HandlerNotFoundError

	switch {
	case eventcore.IsDomainError(err):
		return "domain_rejection"
	case errors.As(err, &exhausted):
		return "retries_exhausted"
	case errors.As(err, &notFound):
		return "handler_not_found"
	case errors.Is(err, eventcore.ErrResourceHasChanged):
		return "resource_has_changed"
	case errors.Is(err, eventcore.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, eventcore.ErrEventTypeNotRegistered):
		return "event_type_not_registered"
	case errors.Is(err, eventcore.ErrNilCommand):
		return "nil_command"
	case errors.Is(err, eventcore.ErrBusClosed):
		return "bus_closed"
	case errors.Is(err, adapters.ErrEmptyResourceID):
		return "empty_resource_id"
	case errors.Is(err, adapters.ErrNoEvents):
		return "no_events"
	case errors.Is(err, adapters.ErrInvalidVersion):
		return "invalid_version"
	case errors.Is(err, adapters.ErrAdapterClosed):
		return "adapter_closed"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	default:
		return "unknown"
	}
}

// AdapterMiddleware wraps an EventStoreAdapter with metrics collection.
type AdapterMiddleware struct {
	adapter adapters.EventStoreAdapter
	metrics *Metrics
}

// WrapAdapter wraps an adapter with metrics collection.
func (m *Metrics) WrapAdapter(adapter adapters.EventStoreAdapter) *AdapterMiddleware {
	return &AdapterMiddleware{
		adapter: adapter,
		metrics: m,
	}
}

// Append commits events with metrics. Version conflicts are counted on
// their own: a rising conflict rate means contended resources, not a
// failing store.
func (am *AdapterMiddleware) Append(ctx context.Context, resourceID string, events []adapters.EventRecord, expectedVersion int64) ([]adapters.StoredEvent, error) {
	start := time.Now()
	stored, err := am.adapter.Append(ctx, resourceID, events, expectedVersion)
	duration := time.Since(start)

	am.metrics.storeOperationDuration.WithLabelValues(am.metrics.serviceName, OperationAppend).Observe(duration.Seconds())

	status := StatusSuccess
	switch {
	case errors.Is(err, adapters.ErrResourceHasChanged):
		status = StatusRejected
		am.metrics.versionConflictsTotal.WithLabelValues(am.metrics.serviceName).Inc()
	case err != nil:
		status = StatusError
		am.metrics.errorsTotal.WithLabelValues(am.metrics.serviceName, errorTypeName(err)).Inc()
	default:
		for _, e := range events {
			am.metrics.eventsCommittedTotal.WithLabelValues(am.metrics.serviceName, e.Type).Inc()
		}
	}

	am.metrics.storeOperationsTotal.WithLabelValues(am.metrics.serviceName, OperationAppend, status).Inc()

	return stored, err
}

// Load retrieves events with metrics.
func (am *AdapterMiddleware) Load(ctx context.Context, resourceID string, fromVersion int64) ([]adapters.StoredEvent, error) {
	start := time.Now()
	events, err := am.adapter.Load(ctx, resourceID, fromVersion)
	duration := time.Since(start)

	am.metrics.storeOperationDuration.WithLabelValues(am.metrics.serviceName, OperationLoad).Observe(duration.Seconds())

	status := StatusSuccess
	if err != nil {
		status = StatusError
		am.metrics.errorsTotal.WithLabelValues(am.metrics.serviceName, errorTypeName(err)).Inc()
	} else {
		am.metrics.eventsLoadedTotal.WithLabelValues(am.metrics.serviceName).Add(float64(len(events)))
	}

	am.metrics.storeOperationsTotal.WithLabelValues(am.metrics.serviceName, OperationLoad, status).Inc()

	return events, err
}

// LoadAll retrieves events across all resources with metrics.
func (am *AdapterMiddleware) LoadAll(ctx context.Context, fromPosition uint64, limit int) ([]adapters.StoredEvent, error) {
	start := time.Now()
	events, err := am.adapter.LoadAll(ctx, fromPosition, limit)
	duration := time.Since(start)

	am.metrics.storeOperationDuration.WithLabelValues(am.metrics.serviceName, "load_all").Observe(duration.Seconds())

	status := StatusSuccess
	if err != nil {
		status = StatusError
		am.metrics.errorsTotal.WithLabelValues(am.metrics.serviceName, errorTypeName(err)).Inc()
	} else {
		am.metrics.eventsLoadedTotal.WithLabelValues(am.metrics.serviceName).Add(float64(len(events)))
	}

	am.metrics.storeOperationsTotal.WithLabelValues(am.metrics.serviceName, "load_all", status).Inc()

	return events, err
}

// GetResourceInfo returns resource metadata with metrics.
func (am *AdapterMiddleware) GetResourceInfo(ctx context.Context, resourceID string) (*adapters.ResourceInfo, error) {
	start := time.Now()
	info, err := am.adapter.GetResourceInfo(ctx, resourceID)
	duration := time.Since(start)

	am.metrics.storeOperationDuration.WithLabelValues(am.metrics.serviceName, "get_resource_info").Observe(duration.Seconds())

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	am.metrics.storeOperationsTotal.WithLabelValues(am.metrics.serviceName, "get_resource_info", status).Inc()

	return info, err
}

// GetLastPosition returns the last global position with metrics.
func (am *AdapterMiddleware) GetLastPosition(ctx context.Context) (uint64, error) {
	start := time.Now()
	pos, err := am.adapter.GetLastPosition(ctx)
	duration := time.Since(start)

	am.metrics.storeOperationDuration.WithLabelValues(am.metrics.serviceName, "get_last_position").Observe(duration.Seconds())

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	am.metrics.storeOperationsTotal.WithLabelValues(am.metrics.serviceName, "get_last_position", status).Inc()

	return pos, err
}

// Initialize initializes the underlying adapter.
func (am *AdapterMiddleware) Initialize(ctx context.Context) error {
	return am.adapter.Initialize(ctx)
}

// Close closes the underlying adapter.
func (am *AdapterMiddleware) Close() error {
	return am.adapter.Close()
}

// Ping checks backend connectivity if the underlying adapter supports it.
func (am *AdapterMiddleware) Ping(ctx context.Context) error {
	if hc, ok := am.adapter.(adapters.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}

// Unwrap returns the underlying adapter.
func (am *AdapterMiddleware) Unwrap() adapters.EventStoreAdapter {
	return am.adapter
}

// RecordError records a custom error.
func (m *Metrics) RecordError(errorType string) {
	m.errorsTotal.WithLabelValues(m.serviceName, errorType).Inc()
}

// CommandsTotal returns the commands counter.
func (m *Metrics) CommandsTotal() *prometheus.CounterVec {
	return m.commandsTotal
}

// CommandsInFlight returns the in-flight commands gauge.
func (m *Metrics) CommandsInFlight() *prometheus.GaugeVec {
	return m.commandsInFlight
}

// EventsCommittedTotal returns the committed events counter.
func (m *Metrics) EventsCommittedTotal() *prometheus.CounterVec {
	return m.eventsCommittedTotal
}

// EventsLoadedTotal returns the loaded events counter.
func (m *Metrics) EventsLoadedTotal() *prometheus.CounterVec {
	return m.eventsLoadedTotal
}

// VersionConflictsTotal returns the version conflicts counter.
func (m *Metrics) VersionConflictsTotal() *prometheus.CounterVec {
	return m.versionConflictsTotal
}

// ErrorsTotal returns the errors counter.
func (m *Metrics) ErrorsTotal() *prometheus.CounterVec {
	return m.errorsTotal
}
