package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler("indent.submitted", "indent.approved")
	registry.Register(handler, "indent.submitted", "indent.approved")

	for _, eventType := range []string{"indent.submitted", "indent.approved"} {
		handlers := registry.GetHandlers(eventType)
		assert.Len(t, handlers, 1)
		assert.Equal(t, handler, handlers[0])
	}
	assert.Empty(t, registry.GetHandlers("indent.rejected"))
}

func TestHandlerRegistry_WildcardSeesEveryType(t *testing.T) {
	registry := NewHandlerRegistry()
	audit := newRecordingHandler()
	registry.Register(audit)

	for _, eventType := range []string{"indent.submitted", "inventory.receipt_recorded"} {
		handlers := registry.GetHandlers(eventType)
		assert.Len(t, handlers, 1)
		assert.Equal(t, audit, handlers[0])
	}
}

func TestHandlerRegistry_WildcardAndSpecificCombine(t *testing.T) {
	registry := NewHandlerRegistry()
	stock := newRecordingHandler("indent.approved")
	audit := newRecordingHandler()
	registry.Register(stock, "indent.approved")
	registry.Register(audit)

	assert.Len(t, registry.GetHandlers("indent.approved"), 2)

	handlers := registry.GetHandlers("indent.closed")
	assert.Len(t, handlers, 1)
	assert.Equal(t, audit, handlers[0])
}

func TestHandlerRegistry_UnregisterKeepsOthers(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newRecordingHandler("indent.approved")
	second := newRecordingHandler("indent.approved")
	registry.Register(first, "indent.approved")
	registry.Register(second, "indent.approved")

	registry.Unregister(first)

	handlers := registry.GetHandlers("indent.approved")
	assert.Len(t, handlers, 1)
	assert.Equal(t, second, handlers[0])
}

func TestHandlerRegistry_UnregisterWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	audit := newRecordingHandler()
	registry.Register(audit)
	assert.Len(t, registry.GetHandlers("indent.submitted"), 1)

	registry.Unregister(audit)
	assert.Empty(t, registry.GetHandlers("indent.submitted"))
}

func TestHandlerRegistry_GetAllHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register(newRecordingHandler("indent.submitted"), "indent.submitted")
	registry.Register(newRecordingHandler("inventory.receipt_recorded"), "inventory.receipt_recorded")
	registry.Register(newRecordingHandler())

	assert.Len(t, registry.GetAllHandlers(), 3)
}

func TestHandlerRegistry_GetAllHandlers_DeduplicatesMultiTypeHandler(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler("indent.submitted", "indent.approved")
	registry.Register(handler, "indent.submitted", "indent.approved")

	assert.Len(t, registry.GetAllHandlers(), 1)
}
