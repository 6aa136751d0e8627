package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// Submitter accepts jobs for asynchronous execution.
type Submitter interface {
	Submit(job Job) error
}
