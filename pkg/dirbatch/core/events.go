package core

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Event is something the executor reports while a batch runs.
type Event interface {
	Type() string
	Timestamp() time.Time
	// Data is a RenameEvent or a BatchEvent.
	Data() interface{}
}

// EventHandler handles events
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
}

// EventHandlerFunc is a function adapter for EventHandler
type EventHandlerFunc func(ctx context.Context, event Event) error

// Handle implements EventHandler
func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// EventBus delivers published events to the handlers subscribed to their type.
type EventBus interface {
	// Subscribe registers handler for the given event types, or for every
	// event when none are given. Subscriptions last as long as the bus.
	Subscribe(handler EventHandler, eventTypes ...string)
	Publish(ctx context.Context, event Event)
}

type event struct {
	eventType string
	at        time.Time
	payload   interface{}
}

func (e event) Type() string { return e.eventType }
func (e event) Timestamp() time.Time { return e.at }
func (e event) Data() interface{} { return e.payload }

// NewEvent stamps payload with the current time.
func NewEvent(eventType string, payload interface{}) Event {
	return event{eventType: eventType, at: time.Now(), payload: payload}
}

// RenameEvent is the payload of rename.* events.
type RenameEvent struct {
	OperationID OperationID
	Source      string
	Target      string
	Error       error
	Duration    time.Duration
}

// BatchEvent is the payload of batch.completed.
type BatchEvent struct {
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

type subscription struct {
	eventTypes []string
	handler    EventHandler
}

func (s subscription) wants(eventType string) bool {
	return len(s.eventTypes) == 0 || slices.Contains(s.eventTypes, eventType)
}

// SyncEventBus calls handlers on the publishing goroutine, in subscription
// order. The executor publishes rename.* events from one goroutine per
// operation, so handlers must be safe for concurrent use.
type SyncEventBus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger Logger
}

// NewSyncEventBus creates an empty bus
func NewSyncEventBus(logger Logger) *SyncEventBus {
	if logger == nil {
		logger = NopLogger()
	}
	return &SyncEventBus{logger: logger}
}

// Subscribe implements EventBus
func (b *SyncEventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{eventTypes: slices.Clone(eventTypes), handler: handler})

	b.logger.Debug().
		Interface("event_types", eventTypes).
		Int("subscriptions", len(b.subs)).
		Msg("subscribed to events")
}

// Publish implements EventBus. A failing handler is logged and does not
// keep the event from the handlers after it.
func (b *SyncEventBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	var handlers []EventHandler
	for _, sub := range b.subs {
		if sub.wants(event.Type()) {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Warn().
				Str("event_type", event.Type()).
				Err(err).
				Msg("event handler failed")
		}
	}
}
