package eventcore

import (
	"time"

	"github.com/google/uuid"

	"github.com/PREreview/eventcore/adapters"
)

// ResourceID identifies one event-sourced resource. IDs are assigned by the
// caller when the resource is first written, typically via NewResourceID.
type ResourceID string

// NewResourceID returns a fresh random resource identifier.
func NewResourceID() ResourceID {
	return ResourceID(uuid.New().String())
}

// String returns the identifier as a plain string.
func (id ResourceID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ResourceID) IsZero() bool {
	return id == ""
}

// Validate returns ErrEmptyResourceID when the identifier is empty.
func (id ResourceID) Validate() error {
	if id.IsZero() {
		return ErrEmptyResourceID
	}
	return nil
}

// Metadata carries contextual information committed alongside an event.
// All fields are optional.
type Metadata struct {
	CorrelationID string            `json:"correlation_id,omitempty"`
	CausationID   string            `json:"causation_id,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	Custom        map[string]string `json:"custom,omitempty"`
}

func (m Metadata) toAdapter() adapters.Metadata {
	return adapters.Metadata{
		CorrelationID: m.CorrelationID,
		CausationID:   m.CausationID,
		ActorID:       m.ActorID,
		Custom:        m.Custom,
	}
}

func metadataFromAdapter(m adapters.Metadata) Metadata {
	return Metadata{
		CorrelationID: m.CorrelationID,
		CausationID:   m.CausationID,
		ActorID:       m.ActorID,
		Custom:        m.Custom,
	}
}

// Event is a committed domain event as read back from the store. Data holds
// the deserialized event payload.
type Event struct {
	ID             string
	ResourceID     ResourceID
	Type           string
	Data           any
	Metadata       Metadata
	Version        int64
	GlobalPosition uint64
	Timestamp      time.Time
}

// ResourceStream is the complete ordered history of one resource.
// LatestVersion is 0 when the resource has no committed events; otherwise it
// equals the version of the last event.
type ResourceStream struct {
	ResourceID    ResourceID
	Events        []Event
	LatestVersion int64
}

// IsEmpty reports whether the resource has no committed events.
func (s ResourceStream) IsEmpty() bool {
	return len(s.Events) == 0
}

// Payloads returns the deserialized event payloads in commit order, ready to
// be folded into aggregate state.
func (s ResourceStream) Payloads() []any {
	payloads := make([]any, len(s.Events))
	for i, event := range s.Events {
		payloads[i] = event.Data
	}
	return payloads
}
