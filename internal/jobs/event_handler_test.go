package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/events"
)

type recordingSubmitter struct {
	jobs []Job
	err  error
}

func (s *recordingSubmitter) Submit(job Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func TestEventHandlerSubmitsAssignmentJob(t *testing.T) {
	sub := &recordingSubmitter{}
	h := NewEventHandler(sub, NewAssignmentNotifier(nil, nil, nil, "", nil), discardLogger())

	event, err := events.NewTaskAssignedEvent(samplePayload())
	require.NoError(t, err)

	require.NoError(t, h.HandleEvent(context.Background(), event))
	require.Len(t, sub.jobs, 1)
	assert.Equal(t, TypeAssignmentNotification, sub.jobs[0].Type())
}

func TestEventHandlerIgnoresUnknownEvents(t *testing.T) {
	sub := &recordingSubmitter{}
	h := NewEventHandler(sub, NewAssignmentNotifier(nil, nil, nil, "", nil), nil)

	event, err := events.NewEvent("project.renamed", map[string]string{"id": uuid.NewString()})
	require.NoError(t, err)

	assert.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Empty(t, sub.jobs)
}

func TestEventHandlerErrors(t *testing.T) {
	notifier := NewAssignmentNotifier(nil, nil, nil, "", nil)

	t.Run("bad payload", func(t *testing.T) {
		h := NewEventHandler(&recordingSubmitter{}, notifier, nil)
		event := &events.Event{ID: uuid.New(), Type: events.TypeTaskAssigned, Payload: []byte(`{"task_id": 7}`)}

		assert.Error(t, h.HandleEvent(context.Background(), event))
	})

	t.Run("queue full", func(t *testing.T) {
		h := NewEventHandler(&recordingSubmitter{err: ErrQueueFull}, notifier, nil)
		event, err := events.NewTaskAssignedEvent(samplePayload())
		require.NoError(t, err)

		err = h.HandleEvent(context.Background(), event)
		assert.True(t, errors.Is(err, ErrQueueFull))
	})
}
