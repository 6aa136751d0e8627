package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
)

// BoardStore defines the interface for board persistence.
type BoardStore interface {
	Create(ctx context.Context, board *domain.Board) error

	// GetByID returns ErrBoardNotFound if the board does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// Rename changes the board name.
	Rename(ctx context.Context, id uuid.UUID, name string) error

	// Delete removes the board and, by cascade, its columns and tasks.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByProject returns the boards of a project, newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Board, error)

	// View returns the board with its columns and tasks ordered by position
	// and the labels of its project.
	View(ctx context.Context, id uuid.UUID) (*domain.BoardView, error)

	WithTx(tx *sql.Tx) BoardStore
}

// ColumnStore defines the interface for column persistence. Positions are
// managed through the ordering engine; Insert writes the position it is given.
type ColumnStore interface {
	// Insert stores column at column.Position without shifting siblings.
	Insert(ctx context.Context, column *domain.Column) error

	// GetByID returns ErrColumnNotFound if the column does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error)

	// Update persists name and color.
	Update(ctx context.Context, column *domain.Column) error

	// ListByBoard returns the columns of a board ordered by position.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]domain.Column, error)

	WithTx(tx *sql.Tx) ColumnStore
}
