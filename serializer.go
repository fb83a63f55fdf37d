package eventcore

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Serializer converts event payloads to and from their stored byte form.
type Serializer interface {
	// Serialize converts an event payload to bytes.
	Serialize(event any) ([]byte, error)

	// Deserialize converts bytes back to a payload of the named event type.
	Deserialize(data []byte, eventType string) (any, error)
}

// EventRegistrar is implemented by serializers that deserialize through a
// type registry and accept registrations of example payloads.
type EventRegistrar interface {
	RegisterAll(examples ...any)
}

// EventNamer lets an event payload choose the type name it is stored
// under. Aggregates whose events share struct names must implement it on
// each event, typically prefixing the aggregate name, so that a shared
// store or registry keeps the types apart.
type EventNamer interface {
	EventTypeName() string
}

// EventRegistry maps event type names to Go types so that stored events can
// be deserialized back to their concrete structs. It is safe for concurrent
// use.
type EventRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewEventRegistry creates an empty EventRegistry.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{
		types: make(map[string]reflect.Type),
	}
}

// Register maps eventType to the Go type of example. Pointers are
// dereferenced to their element type.
func (r *EventRegistry) Register(eventType string, example any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := reflect.TypeOf(example)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.types[eventType] = t
}

// RegisterAll registers each example under its EventTypeName.
func (r *EventRegistry) RegisterAll(examples ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, example := range examples {
		t := reflect.TypeOf(example)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		r.types[EventTypeName(example)] = t
	}
}

// Lookup returns the Go type registered under eventType.
func (r *EventRegistry) Lookup(eventType string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[eventType]
	return t, ok
}

// RegisteredTypes returns the registered event type names, sorted.
func (r *EventRegistry) RegisteredTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count returns the number of registered event types.
func (r *EventRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// JSONSerializer is the default Serializer, encoding payloads as JSON.
// Deserialization requires the event type to be registered: an event stream
// is only useful when it folds back into concrete domain types.
type JSONSerializer struct {
	registry *EventRegistry
}

// NewJSONSerializer creates a JSONSerializer with an empty registry.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{
		registry: NewEventRegistry(),
	}
}

// NewJSONSerializerWithRegistry creates a JSONSerializer sharing the given
// registry.
func NewJSONSerializerWithRegistry(registry *EventRegistry) *JSONSerializer {
	if registry == nil {
		registry = NewEventRegistry()
	}
	return &JSONSerializer{
		registry: registry,
	}
}

// Register adds an event type to the serializer's registry.
func (s *JSONSerializer) Register(eventType string, example any) {
	s.registry.Register(eventType, example)
}

// RegisterAll registers each example under its EventTypeName.
func (s *JSONSerializer) RegisterAll(examples ...any) {
	s.registry.RegisterAll(examples...)
}

// Registry returns the underlying EventRegistry.
func (s *JSONSerializer) Registry() *EventRegistry {
	return s.registry
}

// Serialize converts an event payload to JSON.
func (s *JSONSerializer) Serialize(event any) ([]byte, error) {
	if event == nil {
		return nil, &SerializationError{EventType: "nil", Cause: errors.New("event cannot be nil")}
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, &SerializationError{EventType: EventTypeName(event), Cause: err}
	}
	return data, nil
}

// Deserialize converts JSON back to a value of the registered type.
func (s *JSONSerializer) Deserialize(data []byte, eventType string) (any, error) {
	if len(data) == 0 {
		return nil, &SerializationError{EventType: eventType, Cause: errors.New("data cannot be empty")}
	}

	t, ok := s.registry.Lookup(eventType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEventTypeNotRegistered, eventType)
	}

	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, &SerializationError{EventType: eventType, Cause: err}
	}
	return ptr.Elem().Interface(), nil
}

// EventTypeName returns the type name under which an event payload is
// stored. Events implementing EventNamer choose their own name; otherwise
// it is the struct name of the (possibly pointed-to) type.
func EventTypeName(event any) string {
	if event == nil {
		return ""
	}

	if namer, ok := event.(EventNamer); ok {
		return namer.EventTypeName()
	}

	t := reflect.TypeOf(event)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
