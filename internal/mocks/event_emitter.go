package mocks

import (
	"context"
	"sync"

	"github.com/taskify/taskify-api/internal/events"
)

// EventEmitter records emitted events.
type EventEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	Err    error
}

var _ events.EventEmitter = (*EventEmitter)(nil)

func (e *EventEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.Err
}

// Events returns the events emitted so far.
func (e *EventEmitter) Events() []*events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.Event(nil), e.events...)
}

// Reset forgets recorded events.
func (e *EventEmitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = nil
}
