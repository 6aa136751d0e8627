package events

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
)

type subscription struct {
	handler EventHandler
	types   []string // empty matches every event type
}

func (s subscription) wants(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// InMemoryEventEmitter delivers events synchronously, in registration order,
// to the handlers subscribed to their type.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{logger: logger.With(slog.String("component", "event_emitter"))}
}

// RegisterHandler subscribes handler to the given event types, or to all
// events when none are given.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, types ...string) {
	e.mu.Lock()
	e.subs = append(e.subs, subscription{handler: handler, types: types})
	n := len(e.subs)
	e.mu.Unlock()

	e.logger.Debug("event handler subscribed",
		slog.Any("event_types", types),
		slog.Int("subscriptions", n))
}

// EmitEvent runs every matching handler even when some fail, and returns
// their errors joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	subs := slices.Clone(e.subs)
	e.mu.RUnlock()

	log := e.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	var errs []error
	delivered := 0
	for _, sub := range subs {
		if !sub.wants(event.Type) {
			continue
		}
		delivered++
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if delivered == 0 {
		log.Warn("event has no subscribers")
	}
	return errors.Join(errs...)
}
