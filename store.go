package eventcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/PREreview/eventcore/adapters"
)

// EventStore is the entry point for reading and committing events. Commits
// use explicit expected versions for optimistic concurrency: a commit only
// succeeds when the resource's latest version still equals the expected one.
type EventStore struct {
	adapter    adapters.EventStoreAdapter
	serializer Serializer
	logger     Logger
}

// Logger defines the logging interface used across the module.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a no-op Logger implementation.
type noopLogger struct{}

func (l *noopLogger) Debug(msg string, args ...any) {}
func (l *noopLogger) Info(msg string, args ...any)  {}
func (l *noopLogger) Warn(msg string, args ...any)  {}
func (l *noopLogger) Error(msg string, args ...any) {}

// Option configures an EventStore.
type Option func(*EventStore)

// WithSerializer sets a custom serializer.
func WithSerializer(s Serializer) Option {
	return func(es *EventStore) {
		es.serializer = s
	}
}

// WithLogger sets a custom logger.
func WithLogger(l Logger) Option {
	return func(es *EventStore) {
		es.logger = l
	}
}

// New creates an EventStore with the given adapter and options. The default
// serializer is JSON.
func New(adapter adapters.EventStoreAdapter, opts ...Option) *EventStore {
	es := &EventStore{
		adapter:    adapter,
		serializer: NewJSONSerializer(),
		logger:     &noopLogger{},
	}

	for _, opt := range opts {
		opt(es)
	}

	return es
}

// Serializer returns the event store's serializer.
func (s *EventStore) Serializer() Serializer {
	return s.serializer
}

// Adapter returns the underlying storage adapter.
func (s *EventStore) Adapter() adapters.EventStoreAdapter {
	return s.adapter
}

// Logger returns the event store's logger.
func (s *EventStore) Logger() Logger {
	return s.logger
}

// RegisterEvents registers event types with the serializer. Events must be
// registered before streams containing them can be read back. Registering
// on a store whose serializer is not an EventRegistrar fails, so a wrong
// serializer surfaces at wiring time rather than as unreadable streams.
func (s *EventStore) RegisterEvents(events ...any) error {
	registrar, ok := s.serializer.(EventRegistrar)
	if !ok {
		return fmt.Errorf("%w: %T", ErrSerializerCannotRegister, s.serializer)
	}
	registrar.RegisterAll(events...)
	return nil
}

// CommitOption configures a commit operation.
type CommitOption func(*commitConfig)

type commitConfig struct {
	metadata Metadata
}

// WithCommitMetadata attaches metadata to every event in the commit.
func WithCommitMetadata(m Metadata) CommitOption {
	return func(c *commitConfig) {
		c.metadata = m
	}
}

// GetEvents returns the complete ordered stream of one resource. An unknown
// resource yields an empty stream with LatestVersion 0, not an error.
func (s *EventStore) GetEvents(ctx context.Context, resourceID ResourceID) (ResourceStream, error) {
	if err := resourceID.Validate(); err != nil {
		return ResourceStream{}, err
	}

	stored, err := s.adapter.Load(ctx, resourceID.String(), 0)
	if err != nil {
		return ResourceStream{}, NewUnavailableError("get events", err)
	}

	events := make([]Event, len(stored))
	for i, se := range stored {
		event, err := s.toEvent(se)
		if err != nil {
			return ResourceStream{}, err
		}
		events[i] = event
	}

	stream := ResourceStream{
		ResourceID: resourceID,
		Events:     events,
	}
	if len(events) > 0 {
		stream.LatestVersion = events[len(events)-1].Version
	}
	return stream, nil
}

// loadAllBatchSize is the page size used when reading the global stream.
const loadAllBatchSize = 1000

// GetAllEvents returns every committed event across all resources in global
// commit order.
func (s *EventStore) GetAllEvents(ctx context.Context) ([]Event, error) {
	var (
		events []Event
		from   uint64
	)

	for {
		stored, err := s.adapter.LoadAll(ctx, from, loadAllBatchSize)
		if err != nil {
			return nil, NewUnavailableError("get all events", err)
		}
		if len(stored) == 0 {
			return events, nil
		}

		for _, se := range stored {
			event, err := s.toEvent(se)
			if err != nil {
				return nil, err
			}
			events = append(events, event)
		}
		from = stored[len(stored)-1].GlobalPosition

		if len(stored) < loadAllBatchSize {
			return events, nil
		}
	}
}

// CommitEvent appends a single event to the resource's stream, but only when
// the resource's latest version still equals expectedVersion. A resource
// with no committed events has latest version 0. On a version race the
// commit fails with ErrResourceHasChanged and writes nothing.
func (s *EventStore) CommitEvent(ctx context.Context, resourceID ResourceID, expectedVersion int64, event any, opts ...CommitOption) (Event, error) {
	events, err := s.CommitEvents(ctx, resourceID, expectedVersion, []any{event}, opts...)
	if err != nil {
		return Event{}, err
	}
	return events[0], nil
}

// CommitEvents appends events atomically at consecutive versions starting
// from expectedVersion+1. It returns the committed events with their
// assigned versions and global positions.
func (s *EventStore) CommitEvents(ctx context.Context, resourceID ResourceID, expectedVersion int64, events []any, opts ...CommitOption) ([]Event, error) {
	if err := resourceID.Validate(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	config := &commitConfig{}
	for _, opt := range opts {
		opt(config)
	}

	records := make([]adapters.EventRecord, len(events))
	for i, event := range events {
		eventType := EventTypeName(event)
		if eventType == "" {
			return nil, &SerializationError{EventType: "", Cause: errors.New("cannot determine event type")}
		}

		data, err := s.serializer.Serialize(event)
		if err != nil {
			return nil, err
		}

		records[i] = adapters.EventRecord{
			Type:     eventType,
			Data:     data,
			Metadata: config.metadata.toAdapter(),
		}
	}

	stored, err := s.adapter.Append(ctx, resourceID.String(), records, expectedVersion)
	if err != nil {
		if errors.Is(err, ErrResourceHasChanged) || errors.Is(err, ErrInvalidVersion) {
			return nil, err
		}
		return nil, NewUnavailableError("commit events", err)
	}

	s.logger.Debug("events committed",
		"resource_id", resourceID.String(),
		"count", len(stored),
		"version", stored[len(stored)-1].Version)

	committed := make([]Event, len(stored))
	for i, se := range stored {
		committed[i] = Event{
			ID:             se.ID,
			ResourceID:     ResourceID(se.ResourceID),
			Type:           se.Type,
			Data:           events[i],
			Metadata:       metadataFromAdapter(se.Metadata),
			Version:        se.Version,
			GlobalPosition: se.GlobalPosition,
			Timestamp:      se.Timestamp,
		}
	}
	return committed, nil
}

// LatestVersion returns the resource's current version, 0 when the resource
// has no committed events.
func (s *EventStore) LatestVersion(ctx context.Context, resourceID ResourceID) (int64, error) {
	if err := resourceID.Validate(); err != nil {
		return 0, err
	}

	info, err := s.adapter.GetResourceInfo(ctx, resourceID.String())
	if err != nil {
		return 0, NewUnavailableError("latest version", err)
	}
	if info == nil {
		return 0, nil
	}
	return info.Version, nil
}

func (s *EventStore) toEvent(se adapters.StoredEvent) (Event, error) {
	data, err := s.serializer.Deserialize(se.Data, se.Type)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:             se.ID,
		ResourceID:     ResourceID(se.ResourceID),
		Type:           se.Type,
		Data:           data,
		Metadata:       metadataFromAdapter(se.Metadata),
		Version:        se.Version,
		GlobalPosition: se.GlobalPosition,
		Timestamp:      se.Timestamp,
	}, nil
}
