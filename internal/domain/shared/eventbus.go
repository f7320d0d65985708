package shared

import "context"

// EventHandler reacts to domain events delivered by the bus.
type EventHandler interface {
	// Handle processes one event. Returning an error lets the bus
	// retry or dead-letter the delivery depending on its policy.
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants. An empty
	// slice subscribes it to everything.
	EventTypes() []string
}

// EventPublisher fans domain events out to subscribed handlers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations.
type EventSubscriber interface {
	// Subscribe registers a handler. With no event types given the
	// handler receives every event.
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a previously registered handler.
	Unsubscribe(handler EventHandler)
}

// EventBus is the full publish/subscribe surface plus lifecycle
// control for any background delivery loop.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver writes domain events into the outbox table inside
// the caller's transaction, so the row change and its events commit
// or roll back together.
type OutboxEventSaver interface {
	// SaveEvents persists events within the given transaction. The
	// txProvider is expected to be a *gorm.DB.
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
