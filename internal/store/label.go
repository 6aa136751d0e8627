package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
)

// LabelStore defines the interface for label persistence.
type LabelStore interface {
	// Create returns ErrLabelNameExists if the project already has the name.
	Create(ctx context.Context, label *domain.Label) error

	// GetByID returns ErrLabelNotFound if the label does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Label, error)

	// Update persists name and color. Returns ErrLabelNameExists on a name clash.
	Update(ctx context.Context, label *domain.Label) error

	// Delete detaches the label from its tasks and removes it.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByProject returns the labels of a project ordered by name, with task counts.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Label, error)

	WithTx(tx *sql.Tx) LabelStore
}
