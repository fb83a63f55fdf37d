// Package protobuf provides a Protocol Buffers serializer for the event
// store.
//
// Only payloads that implement proto.Message can pass through this
// serializer; domains whose events are generated from .proto definitions
// get smaller payloads and a schema shared with other consumers of the
// stream. For plain struct events, use the JSON or MessagePack serializers.
//
// Usage:
//
//	s := protobuf.NewSerializer()
//	s.Register("CommentWasStarted", &pb.CommentWasStarted{})
//
//	data, err := s.Serialize(event)
//	result, err := s.Deserialize(data, "CommentWasStarted")
package protobuf

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"google.golang.org/protobuf/proto"
)

var (
	// ErrNilEvent indicates an attempt to serialize a nil event.
	ErrNilEvent = errors.New("eventcore/protobuf: cannot serialize nil event")

	// ErrEmptyData indicates an attempt to deserialize empty data.
	ErrEmptyData = errors.New("eventcore/protobuf: cannot deserialize empty data")

	// ErrNotProtoMessage indicates the event does not implement proto.Message.
	ErrNotProtoMessage = errors.New("eventcore/protobuf: event must implement proto.Message")

	// ErrTypeNotRegistered indicates the event type is not registered.
	ErrTypeNotRegistered = errors.New("eventcore/protobuf: event type not registered")
)

// SerializationError reports a serialization failure with its cause.
type SerializationError struct {
	EventType string
	Operation string
	Cause     error
}

func (e *SerializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("eventcore/protobuf: failed to %s %s: %v", e.Operation, e.EventType, e.Cause)
	}
	return fmt.Sprintf("eventcore/protobuf: failed to %s %s", e.Operation, e.EventType)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

func (e *SerializationError) Is(target error) bool {
	switch target {
	case ErrNilEvent, ErrEmptyData, ErrNotProtoMessage, ErrTypeNotRegistered:
		return errors.Is(e.Cause, target)
	}
	return false
}

// Serializer implements eventcore.Serializer using Protocol Buffers. It is
// safe for concurrent use.
type Serializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

// NewSerializer creates a Protocol Buffers serializer with an empty
// registry.
func NewSerializer() *Serializer {
	return &Serializer{
		registry: make(map[string]reflect.Type),
	}
}

// Register maps eventType to the concrete type of example, which must
// implement proto.Message.
func (s *Serializer) Register(eventType string, example proto.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(example)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.registry[eventType] = t
}

// RegisterAll registers each message under its struct name.
func (s *Serializer) RegisterAll(examples ...proto.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, example := range examples {
		t := reflect.TypeOf(example)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		s.registry[t.Name()] = t
	}
}

// RegisteredTypes returns the registered event type names.
func (s *Serializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.registry))
	for t := range s.registry {
		types = append(types, t)
	}
	return types
}

// Serialize converts a proto.Message event to bytes.
func (s *Serializer) Serialize(event any) ([]byte, error) {
	if event == nil {
		return nil, &SerializationError{EventType: "nil", Operation: "serialize", Cause: ErrNilEvent}
	}

	msg, ok := event.(proto.Message)
	if !ok {
		return nil, &SerializationError{
			EventType: fmt.Sprintf("%T", event),
			Operation: "serialize",
			Cause:     ErrNotProtoMessage,
		}
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, &SerializationError{
			EventType: string(msg.ProtoReflect().Descriptor().Name()),
			Operation: "serialize",
			Cause:     err,
		}
	}
	return data, nil
}

// Deserialize converts bytes back to the registered proto.Message type.
// The returned value is a pointer to the message.
func (s *Serializer) Deserialize(data []byte, eventType string) (any, error) {
	if len(data) == 0 {
		return nil, &SerializationError{EventType: eventType, Operation: "deserialize", Cause: ErrEmptyData}
	}

	s.mu.RLock()
	t, ok := s.registry[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, &SerializationError{EventType: eventType, Operation: "deserialize", Cause: ErrTypeNotRegistered}
	}

	ptr := reflect.New(t)
	msg, ok := ptr.Interface().(proto.Message)
	if !ok {
		return nil, &SerializationError{EventType: eventType, Operation: "deserialize", Cause: ErrNotProtoMessage}
	}

	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, &SerializationError{EventType: eventType, Operation: "deserialize", Cause: err}
	}
	return msg, nil
}
