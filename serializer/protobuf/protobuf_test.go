package protobuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type notAProto struct {
	Text string
}

func TestSerializer_Serialize(t *testing.T) {
	t.Run("round trips a proto message", func(t *testing.T) {
		s := NewSerializer()
		s.Register("StringValue", &wrapperspb.StringValue{})

		data, err := s.Serialize(wrapperspb.String("a comment"))
		require.NoError(t, err)

		result, err := s.Deserialize(data, "StringValue")
		require.NoError(t, err)

		value, ok := result.(*wrapperspb.StringValue)
		require.True(t, ok)
		assert.Equal(t, "a comment", value.GetValue())
	})

	t.Run("rejects nil event", func(t *testing.T) {
		s := NewSerializer()

		_, err := s.Serialize(nil)
		assert.ErrorIs(t, err, ErrNilEvent)
	})

	t.Run("rejects non-proto event", func(t *testing.T) {
		s := NewSerializer()

		_, err := s.Serialize(notAProto{Text: "hello"})
		assert.ErrorIs(t, err, ErrNotProtoMessage)
	})

	t.Run("error carries the event type", func(t *testing.T) {
		s := NewSerializer()

		_, err := s.Serialize(notAProto{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notAProto")
	})
}

func TestSerializer_Deserialize(t *testing.T) {
	t.Run("rejects empty data", func(t *testing.T) {
		s := NewSerializer()
		s.Register("StringValue", &wrapperspb.StringValue{})

		_, err := s.Deserialize(nil, "StringValue")
		assert.ErrorIs(t, err, ErrEmptyData)
	})

	t.Run("rejects unregistered type", func(t *testing.T) {
		s := NewSerializer()

		data, err := s.Serialize(wrapperspb.String("orphaned"))
		require.NoError(t, err)

		_, err = s.Deserialize(data, "StringValue")
		assert.ErrorIs(t, err, ErrTypeNotRegistered)
	})

	t.Run("distinct registrations stay distinct", func(t *testing.T) {
		s := NewSerializer()
		s.Register("StringValue", &wrapperspb.StringValue{})
		s.Register("Int32Value", &wrapperspb.Int32Value{})

		data, err := s.Serialize(wrapperspb.Int32(42))
		require.NoError(t, err)

		result, err := s.Deserialize(data, "Int32Value")
		require.NoError(t, err)

		value, ok := result.(*wrapperspb.Int32Value)
		require.True(t, ok)
		assert.Equal(t, int32(42), value.GetValue())
	})
}

func TestSerializer_RegisterAll(t *testing.T) {
	t.Run("registers under struct names", func(t *testing.T) {
		s := NewSerializer()
		s.RegisterAll(&wrapperspb.StringValue{}, &wrapperspb.BoolValue{})

		types := s.RegisteredTypes()
		assert.ElementsMatch(t, []string{"StringValue", "BoolValue"}, types)
	})
}

func TestSerializer_StructuredPayload(t *testing.T) {
	t.Run("round trips nested structure", func(t *testing.T) {
		s := NewSerializer()
		s.Register("Struct", &structpb.Struct{})

		payload, err := structpb.NewStruct(map[string]any{
			"text":    "This is a helpful dataset.",
			"persona": "public",
		})
		require.NoError(t, err)

		data, err := s.Serialize(payload)
		require.NoError(t, err)

		result, err := s.Deserialize(data, "Struct")
		require.NoError(t, err)

		decoded, ok := result.(*structpb.Struct)
		require.True(t, ok)
		assert.Equal(t, "public", decoded.Fields["persona"].GetStringValue())
	})
}
