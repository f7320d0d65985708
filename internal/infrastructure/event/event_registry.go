package event

import (
	"github.com/indentflow/backend/internal/domain/procurement"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(procurement.EventTypeIndentCreated, &procurement.IndentCreatedEvent{})
	serializer.Register(procurement.EventTypeIndentSubmitted, &procurement.IndentSubmittedEvent{})
	serializer.Register(procurement.EventTypeIndentApproved, &procurement.IndentApprovedEvent{})
	serializer.Register(procurement.EventTypeIndentRejected, &procurement.IndentRejectedEvent{})
	serializer.Register(procurement.EventTypeIndentReverted, &procurement.IndentRevertedEvent{})
	serializer.Register(procurement.EventTypeIndentResubmitted, &procurement.IndentResubmittedEvent{})
	serializer.Register(procurement.EventTypeIndentOrdered, &procurement.IndentOrderedEvent{})
	serializer.Register(procurement.EventTypeIndentReceiptRecorded, &procurement.IndentReceiptRecordedEvent{})
	serializer.Register(procurement.EventTypeIndentFullyReceived, &procurement.IndentFullyReceivedEvent{})
	serializer.Register(procurement.EventTypeIndentClosed, &procurement.IndentClosedEvent{})
}
