// Package adapters defines the storage interface implemented by event store
// backends, together with the shared optimistic-concurrency check.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for adapter implementations.
// Adapters should return these (or errors that match via errors.Is)
// to enable consistent error handling across different backends.
var (
	// ErrResourceHasChanged is returned when the optimistic concurrency
	// check fails: another writer committed to the resource since the
	// caller last read it.
	ErrResourceHasChanged = errors.New("eventcore: resource has changed")

	// ErrEmptyResourceID is returned when an empty resource ID is provided.
	ErrEmptyResourceID = errors.New("eventcore: resource ID is required")

	// ErrNoEvents is returned when attempting to append zero events.
	ErrNoEvents = errors.New("eventcore: no events to append")

	// ErrInvalidVersion is returned when a negative expected version other
	// than AnyVersion is specified.
	ErrInvalidVersion = errors.New("eventcore: invalid expected version")

	// ErrAdapterClosed is returned when operations are attempted on a
	// closed adapter.
	ErrAdapterClosed = errors.New("eventcore: adapter is closed")
)

// Version constants for optimistic concurrency control.
const (
	// AnyVersion skips the version check. Use only for operational tooling;
	// command handlers always pass an exact expected version.
	AnyVersion int64 = -1

	// NoHistory requires the resource to have no committed events yet.
	// It equals zero so that a resource's initial latest version doubles
	// as the expected version for its first commit.
	NoHistory int64 = 0
)

// Metadata carries contextual information alongside an event: who acted,
// and how the event relates to other events and commands.
type Metadata struct {
	// CorrelationID links events produced by the same user interaction.
	CorrelationID string `json:"correlationId,omitempty"`

	// CausationID identifies the command or event that caused this event.
	CausationID string `json:"causationId,omitempty"`

	// ActorID identifies who triggered the event, usually an ORCID iD.
	ActorID string `json:"actorId,omitempty"`

	// Custom holds any additional metadata.
	Custom map[string]string `json:"custom,omitempty"`
}

// EventRecord is an event to be appended: the adapter-level representation
// before storage assigns identity and position.
type EventRecord struct {
	// Type is the event type identifier, e.g. "CommentWasStarted".
	Type string

	// Data is the serialized event payload.
	Data []byte

	// Metadata contains optional contextual information.
	Metadata Metadata
}

// StoredEvent is a persisted event together with its storage envelope.
type StoredEvent struct {
	// ID is the unique event identifier.
	ID string

	// ResourceID is the resource this event belongs to.
	ResourceID string

	// Type is the event type identifier.
	Type string

	// Data is the serialized event payload.
	Data []byte

	// Metadata contains contextual information.
	Metadata Metadata

	// Version is the position within the resource's stream, starting at 1.
	Version int64

	// GlobalPosition is the insertion-ordered position across all resources.
	GlobalPosition uint64

	// Timestamp is when the event was committed.
	Timestamp time.Time
}

// ResourceInfo contains metadata about a resource's event stream.
type ResourceInfo struct {
	// ResourceID is the resource identifier.
	ResourceID string

	// Version is the resource's latest committed version.
	Version int64

	// EventCount is the number of committed events.
	EventCount int64

	// CreatedAt is when the first event was committed.
	CreatedAt time.Time

	// UpdatedAt is when the last event was committed.
	UpdatedAt time.Time
}

// EventStoreAdapter is the interface that storage backends implement.
// Append is the sole concurrency-control primitive: there are no
// resource-level locks or reservations, so callers that lose a version
// race must re-read and retry.
type EventStoreAdapter interface {
	// Append atomically commits events to the resource's stream.
	// expectedVersion specifies the expected current version:
	//   - AnyVersion (-1): skip the check
	//   - NoHistory (0) or any positive number: resource must be at
	//     exactly this version
	// On a version mismatch it returns an error matching
	// ErrResourceHasChanged and commits nothing.
	Append(ctx context.Context, resourceID string, events []EventRecord, expectedVersion int64) ([]StoredEvent, error)

	// Load retrieves events for a resource with Version > fromVersion,
	// in version order. An unknown resource yields an empty slice, not
	// an error.
	Load(ctx context.Context, resourceID string, fromVersion int64) ([]StoredEvent, error)

	// LoadAll retrieves events across all resources with
	// GlobalPosition > fromPosition, in global insertion order, up to
	// limit events.
	LoadAll(ctx context.Context, fromPosition uint64, limit int) ([]StoredEvent, error)

	// GetResourceInfo returns metadata about a resource's stream.
	// Returns nil, nil for a resource with no committed events.
	GetResourceInfo(ctx context.Context, resourceID string) (*ResourceInfo, error)

	// GetLastPosition returns the global position of the last committed
	// event, or 0 if the store is empty.
	GetLastPosition(ctx context.Context) (uint64, error)

	// Initialize sets up the required storage schema.
	Initialize(ctx context.Context) error

	// Close releases any resources held by the adapter.
	Close() error
}

// HealthChecker is optionally implemented by adapters that can verify
// connectivity to their backend.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ResourceLister is optionally implemented by adapters that can enumerate
// resources, used by the inspection CLI.
type ResourceLister interface {
	// ListResources returns summaries for up to limit resources
	// (0 for unlimited), ordered by resource ID.
	ListResources(ctx context.Context, limit int) ([]ResourceInfo, error)
}

// ResourceHasChangedError reports a failed optimistic concurrency check.
type ResourceHasChangedError struct {
	ResourceID      string
	ExpectedVersion int64
	ActualVersion   int64
}

// NewResourceHasChangedError creates a new ResourceHasChangedError.
func NewResourceHasChangedError(resourceID string, expected, actual int64) *ResourceHasChangedError {
	return &ResourceHasChangedError{
		ResourceID:      resourceID,
		ExpectedVersion: expected,
		ActualVersion:   actual,
	}
}

// Error implements the error interface.
func (e *ResourceHasChangedError) Error() string {
	return fmt.Sprintf("eventcore: resource %q has changed: expected version %d, got %d",
		e.ResourceID, e.ExpectedVersion, e.ActualVersion)
}

// Is reports whether this error matches ErrResourceHasChanged.
func (e *ResourceHasChangedError) Is(target error) bool {
	return target == ErrResourceHasChanged
}

// CheckVersion validates an expected version against the resource's current
// version. This implements the optimistic concurrency decision shared by all
// adapters: either the caller's view of the stream is current, or the write
// is rejected and nothing changes.
func CheckVersion(resourceID string, expected, current int64) error {
	switch {
	case expected == AnyVersion:
		return nil
	case expected < 0:
		return ErrInvalidVersion
	case expected != current:
		return NewResourceHasChangedError(resourceID, expected, current)
	default:
		return nil
	}
}

// DefaultLimit returns defaultValue when limit is not positive.
// Used for pagination in LoadAll.
func DefaultLimit(limit, defaultValue int) int {
	if limit <= 0 {
		return defaultValue
	}
	return limit
}
