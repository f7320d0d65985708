package event

import (
	"testing"
	"time"

	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSerializerWithIndentEvent() *EventSerializer {
	s := NewEventSerializer()
	s.Register("indent.submitted", &indentEvent{})
	return s
}

func TestEventSerializer_Register(t *testing.T) {
	serializer := newSerializerWithIndentEvent()

	assert.True(t, serializer.IsRegistered("indent.submitted"))
	assert.False(t, serializer.IsRegistered("indent.approved"))
}

func TestEventSerializer_RegisteredTypes(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("indent.submitted", &indentEvent{})
	serializer.Register("indent.approved", &indentEvent{})

	types := serializer.RegisteredTypes()
	assert.Len(t, types, 2)
	assert.Contains(t, types, "indent.submitted")
	assert.Contains(t, types, "indent.approved")
}

func TestEventSerializer_Serialize(t *testing.T) {
	serializer := NewEventSerializer()

	data, err := serializer.Serialize(newIndentEvent("indent.submitted"))

	require.NoError(t, err)
	assert.Contains(t, string(data), `"indent_no":"IND-2026-0001"`)
}

func TestEventSerializer_Deserialize(t *testing.T) {
	serializer := newSerializerWithIndentEvent()
	original := newIndentEvent("indent.submitted")

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	decoded, err := serializer.Deserialize("indent.submitted", data)
	require.NoError(t, err)

	event, ok := decoded.(*indentEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventType(), event.EventType())
	assert.Equal(t, original.IndentNo, event.IndentNo)
}

func TestEventSerializer_Deserialize_UnknownType(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize("indent.closed", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestEventSerializer_Deserialize_MalformedPayload(t *testing.T) {
	serializer := newSerializerWithIndentEvent()

	_, err := serializer.Deserialize("indent.submitted", []byte(`{"indent_no":`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}

func TestEventSerializer_RoundTripPreservesEnvelope(t *testing.T) {
	serializer := newSerializerWithIndentEvent()
	original := &indentEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:            uuid.New(),
			Type:          "indent.submitted",
			Timestamp:     time.Now().Truncate(time.Second),
			AggID:         uuid.New(),
			AggType:       "MaterialIndent",
			TenantIDValue: uuid.New(),
		},
		IndentNo: "IND-2026-0417",
	}

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	decoded, err := serializer.Deserialize("indent.submitted", data)
	require.NoError(t, err)

	event := decoded.(*indentEvent)
	assert.Equal(t, original.EventID(), event.EventID())
	assert.Equal(t, original.AggregateID(), event.AggregateID())
	assert.Equal(t, original.AggregateType(), event.AggregateType())
	assert.Equal(t, original.TenantID(), event.TenantID())
	assert.Equal(t, original.IndentNo, event.IndentNo)
}
