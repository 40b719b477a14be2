package shared

import "context"

// EventPublisher delivers domain events to whoever subscribed
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler consumes domain events
type EventHandler interface {
	// Handle processes a single event. Returning an error leaves the event
	// eligible for redelivery.
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes names the event types this handler wants. Empty means
	// everything.
	EventTypes() []string
}

// EventSubscriber manages handler registrations
type EventSubscriber interface {
	// Subscribe routes the given event types to the handler; with no types
	// the handler sees every event
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe drops the handler's registration
	Unsubscribe(handler EventHandler)
}

// EventBus is a publisher with a subscription surface and a lifecycle
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver stages domain events in the outbox table so they commit
// atomically with the aggregate state that produced them.
type OutboxEventSaver interface {
	// SaveEvents writes the events inside the caller's transaction;
	// txProvider carries the open *gorm.DB transaction
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
