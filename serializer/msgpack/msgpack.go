// Package msgpack provides a MessagePack serializer for the event store.
//
// MessagePack produces smaller payloads than JSON while keeping the same
// registry-based deserialization model, which matters for resources with
// long event histories.
//
// Basic usage:
//
//	serializer := msgpack.NewSerializer()
//	serializer.RegisterAll(comment.Events()...)
//
//	store := eventcore.New(adapter, eventcore.WithSerializer(serializer))
package msgpack

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/PREreview/eventcore"
)

// Serializer is a MessagePack implementation of eventcore.Serializer.
// Like the JSON default, deserialization requires the event type to be
// registered.
type Serializer struct {
	registry *eventcore.EventRegistry
}

// NewSerializer creates a MessagePack Serializer with an empty registry.
func NewSerializer() *Serializer {
	return &Serializer{
		registry: eventcore.NewEventRegistry(),
	}
}

// NewSerializerWithRegistry creates a Serializer sharing the given registry.
func NewSerializerWithRegistry(registry *eventcore.EventRegistry) *Serializer {
	if registry == nil {
		registry = eventcore.NewEventRegistry()
	}
	return &Serializer{
		registry: registry,
	}
}

// Register adds an event type to the serializer's registry.
func (s *Serializer) Register(eventType string, example any) {
	s.registry.Register(eventType, example)
}

// RegisterAll registers each example under its eventcore.EventTypeName.
func (s *Serializer) RegisterAll(examples ...any) {
	s.registry.RegisterAll(examples...)
}

// Registry returns the underlying registry.
func (s *Serializer) Registry() *eventcore.EventRegistry {
	return s.registry
}

// Serialize converts an event payload to MessagePack bytes.
func (s *Serializer) Serialize(event any) ([]byte, error) {
	if event == nil {
		return nil, &eventcore.SerializationError{EventType: "nil", Cause: errors.New("event cannot be nil")}
	}

	data, err := msgpack.Marshal(event)
	if err != nil {
		return nil, &eventcore.SerializationError{EventType: eventcore.EventTypeName(event), Cause: err}
	}
	return data, nil
}

// Deserialize converts MessagePack bytes back to a value of the registered
// type.
func (s *Serializer) Deserialize(data []byte, eventType string) (any, error) {
	if len(data) == 0 {
		return nil, &eventcore.SerializationError{EventType: eventType, Cause: errors.New("data cannot be empty")}
	}

	t, ok := s.registry.Lookup(eventType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", eventcore.ErrEventTypeNotRegistered, eventType)
	}

	ptr := reflect.New(t)
	if err := msgpack.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, &eventcore.SerializationError{EventType: eventType, Cause: err}
	}
	return ptr.Elem().Interface(), nil
}
