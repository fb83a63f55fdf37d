package eventcore

import (
	"errors"
	"fmt"

	"github.com/PREreview/eventcore/adapters"
)

// Sentinel errors re-exported from the adapters package so callers rarely
// need to import it directly.
var (
	// ErrResourceHasChanged is returned when a commit's expected version no
	// longer matches the resource's latest version. It is always safe to
	// re-read, re-decide and retry after seeing this error.
	ErrResourceHasChanged = adapters.ErrResourceHasChanged

	// ErrEmptyResourceID is returned when an operation is given an empty
	// resource identifier.
	ErrEmptyResourceID = adapters.ErrEmptyResourceID

	// ErrNoEvents is returned when a commit is attempted with no events.
	ErrNoEvents = adapters.ErrNoEvents

	// ErrInvalidVersion is returned when an expected version is negative.
	ErrInvalidVersion = adapters.ErrInvalidVersion
)

var (
	// ErrStoreUnavailable wraps storage-level failures such as connection
	// loss, timeouts and closed adapters. Callers match it with errors.Is.
	ErrStoreUnavailable = errors.New("eventcore: store unavailable")

	// ErrEventTypeNotRegistered is returned when deserializing an event
	// whose type has not been registered with the serializer.
	ErrEventTypeNotRegistered = errors.New("eventcore: event type not registered")

	// ErrSerializerCannotRegister is returned when registering event types
	// on a store whose serializer has no type registry.
	ErrSerializerCannotRegister = errors.New("eventcore: serializer cannot register event types")

	// ErrNilCommand is returned when a nil command is dispatched.
	ErrNilCommand = errors.New("eventcore: command cannot be nil")

	// ErrBusClosed is returned when dispatching on a closed command bus.
	ErrBusClosed = errors.New("eventcore: command bus is closed")
)

// UnavailableError reports a failed storage operation. It matches
// ErrStoreUnavailable and unwraps to the underlying cause.
type UnavailableError struct {
	Op    string
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("eventcore: %s: store unavailable: %v", e.Op, e.Cause)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// NewUnavailableError wraps err as a storage-level failure of op.
func NewUnavailableError(op string, err error) *UnavailableError {
	return &UnavailableError{Op: op, Cause: err}
}

// RetriesExhaustedError is returned when a command handler gives up after
// losing the version race on every attempt. It is a storage-level failure,
// not a domain error: the command itself was never rejected. It matches
// ErrStoreUnavailable and unwraps to the last conflict.
type RetriesExhaustedError struct {
	ResourceID ResourceID
	Attempts   int
	Cause      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("eventcore: resource %s: retries exhausted after %d attempts: %v",
		e.ResourceID, e.Attempts, e.Cause)
}

func (e *RetriesExhaustedError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Cause
}

// SerializationError reports a failure to serialize or deserialize an event.
type SerializationError struct {
	EventType string
	Cause     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("eventcore: serialization failed for event type %q: %v", e.EventType, e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// HandlerNotFoundError is returned when no handler is registered for a
// command type.
type HandlerNotFoundError struct {
	CommandType string
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("eventcore: no handler registered for command type %q", e.CommandType)
}

// DomainError marks errors produced by decide functions: the aggregate's
// state rejected the command. Domain errors are never retried and pass
// through the command handler unchanged.
type DomainError interface {
	error

	// DomainError is a marker method implemented by domain error types.
	DomainError()
}

// IsDomainError reports whether err or any error it wraps is a DomainError.
func IsDomainError(err error) bool {
	var domainErr DomainError
	return errors.As(err, &domainErr)
}
