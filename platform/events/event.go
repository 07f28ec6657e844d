// Package events carries the in-process event bus that dialog,
// analytics, notification and reminder modules use to talk to each
// other without importing one another.
package events

import (
	"context"
	"time"
)

// Event is anything a module can put on the bus. Concrete event types
// live next to the module that publishes them.
type Event interface {
	// EventName identifies the event type; subscribers key on it.
	EventName() string
	// OccurredAt is the publish time.
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp shared by every event; embed it in
// concrete event structs.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt is the publish time.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a BaseEvent with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events of one EventName.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events and fans them out to subscribed handlers.
type Bus interface {
	// Publish delivers the event to every handler subscribed to its
	// name. Delivery is asynchronous; errors are logged, not returned.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for every handler.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers handler for events whose EventName matches
	// eventName.
	Subscribe(eventName string, handler Handler)
}
