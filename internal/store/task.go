package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
)

// TaskQuery filters a task listing. Zero values mean "no filter".
type TaskQuery struct {
	// OwnerID restricts results to tasks in projects owned by this user.
	OwnerID   uuid.UUID
	Search    string
	Priority  domain.Priority
	ColumnID  uuid.UUID
	BoardID   uuid.UUID
	ProjectID uuid.UUID
	// DueFrom and DueTo bound the due date as [DueFrom, DueTo).
	DueFrom time.Time
	DueTo   time.Time
	Page    domain.Page
}

// TaskStore defines the interface for task persistence. Positions are
// managed through the ordering engine; Insert writes the position it is given.
type TaskStore interface {
	// Insert stores task at task.Position without shifting siblings.
	Insert(ctx context.Context, task *domain.Task) error

	// GetByID returns the task with creator, assignee and label projections.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists the editable fields (title, description, priority,
	// due date, assignee, label).
	Update(ctx context.Context, task *domain.Task) error

	// List returns one page of tasks ordered by most recently updated,
	// together with the total number of matches.
	List(ctx context.Context, q TaskQuery) ([]domain.Task, int, error)

	WithTx(tx *sql.Tx) TaskStore
}
