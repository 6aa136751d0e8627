package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TypeTaskAssigned is published when a task gets an assignee other than the
// user who made the change.
const TypeTaskAssigned = "task.assigned"

// Event is a committed domain change.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type names what happened, e.g. TypeTaskAssigned
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the specified type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// TaskAssigned is the payload of a TypeTaskAssigned event.
type TaskAssigned struct {
	TaskID      uuid.UUID `json:"task_id"`
	TaskTitle   string    `json:"task_title"`
	AssigneeID  uuid.UUID `json:"assignee_id"`
	ActorID     uuid.UUID `json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	BoardID     uuid.UUID `json:"board_id"`
	ProjectName string    `json:"project_name"`
}

// NewTaskAssignedEvent wraps p in a TypeTaskAssigned event.
func NewTaskAssignedEvent(p TaskAssigned) (*Event, error) {
	return NewEvent(TypeTaskAssigned, p)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
