package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
)

// ProjectQuery filters a project listing.
type ProjectQuery struct {
	// OwnerID restricts results to one owner when not uuid.Nil.
	OwnerID uuid.UUID
	// Search matches the project name, case-insensitively.
	Search string
	Page   domain.Page
}

// ProjectStore defines the interface for project persistence.
type ProjectStore interface {
	Create(ctx context.Context, project *domain.Project) error

	// GetByID returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// Update persists name, description and color.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes the project and, by cascade, its boards, columns, tasks and labels.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of projects ordered by most recently updated,
	// together with the total number of matches.
	List(ctx context.Context, q ProjectQuery) ([]domain.Project, int, error)

	WithTx(tx *sql.Tx) ProjectStore
}

// OwnershipStore resolves the project owner that governs access to any
// resource in the project tree.
type OwnershipStore interface {
	ProjectOwner(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
	BoardOwner(ctx context.Context, boardID uuid.UUID) (uuid.UUID, error)
	ColumnOwner(ctx context.Context, columnID uuid.UUID) (uuid.UUID, error)
	TaskOwner(ctx context.Context, taskID uuid.UUID) (uuid.UUID, error)
	LabelOwner(ctx context.Context, labelID uuid.UUID) (uuid.UUID, error)

	WithTx(tx *sql.Tx) OwnershipStore
}
