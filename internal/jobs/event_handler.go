package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskify/taskify-api/internal/events"
)

// EventHandler turns domain events into jobs.
type EventHandler struct {
	submitter Submitter
	notifier  *AssignmentNotifier
	logger    *slog.Logger
}

// NewEventHandler creates an EventHandler that submits to submitter.
func NewEventHandler(submitter Submitter, notifier *AssignmentNotifier, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		submitter: submitter,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "job_event_handler")),
	}
}

// HandleEvent submits the job for event. Unknown event types are ignored.
func (h *EventHandler) HandleEvent(_ context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeTaskAssigned:
		var payload events.TaskAssigned
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
		}
		job := h.notifier.Job(payload)
		if err := h.submitter.Submit(job); err != nil {
			return fmt.Errorf("failed to submit job: %w", err)
		}
		h.logger.Debug("job submitted",
			slog.String("event_id", event.ID.String()),
			slog.String("job_id", job.ID().String()))
		return nil
	default:
		h.logger.Debug("ignoring event with unsupported type",
			slog.String("event_type", event.Type),
			slog.String("event_id", event.ID.String()))
		return nil
	}
}

var _ events.EventHandler = (*EventHandler)(nil)
