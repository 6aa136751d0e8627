package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/ordering"
)

// ColumnInput holds the fields of a new column.
type ColumnInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// ColumnPatch holds the fields of a column update. Unset fields are kept.
type ColumnPatch struct {
	Name  domain.Optional[string] `json:"name"`
	Color domain.Optional[string] `json:"color"`
}

// ColumnService manages the ordered columns of a board.
type ColumnService interface {
	List(ctx context.Context, actor domain.Actor, boardID uuid.UUID) ([]domain.Column, error)

	// Create appends a column to the end of the board.
	Create(ctx context.Context, actor domain.Actor, boardID uuid.UUID, in ColumnInput) (*domain.Column, error)

	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch ColumnPatch) (*domain.Column, error)

	// Delete removes the column and its tasks and closes the gap it leaves.
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error

	// Reorder sets the column order of a board. ids must list every column
	// of the board exactly once; otherwise ordering.ErrInvalidRange is
	// returned and nothing changes.
	Reorder(ctx context.Context, actor domain.Actor, boardID uuid.UUID, ids []uuid.UUID) ([]domain.Column, error)
}

type columnService struct {
	base
}

// NewColumnService creates a ColumnService.
func NewColumnService(d Deps) ColumnService {
	return &columnService{base: newBase(d, "column_service")}
}

func (s *columnService) List(ctx context.Context, actor domain.Actor, boardID uuid.UUID) ([]domain.Column, error) {
	if err := authorize(ctx, actor, s.policy, s.stores.Ownership.BoardOwner, boardID); err != nil {
		return nil, s.fail(ctx, "list_columns", "board not accessible", err,
			slog.String("board_id", boardID.String()))
	}
	columns, err := s.stores.Columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, s.fail(ctx, "list_columns", "failed to list columns", err,
			slog.String("board_id", boardID.String()))
	}
	return columns, nil
}

func (s *columnService) Create(
	ctx context.Context,
	actor domain.Actor,
	boardID uuid.UUID,
	in ColumnInput,
) (*domain.Column, error) {
	col, err := domain.NewColumn(boardID, in.Name, in.Color)
	if err != nil {
		return nil, s.fail(ctx, "create_column", "invalid column", err)
	}

	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).BoardOwner, boardID); err != nil {
			return err
		}
		_, err := ordering.Append(ctx, s.stores.ColumnList(tx), boardID, insertColumn(s.stores.Columns.WithTx(tx), col))
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "create_column", "failed to create column", err,
			slog.String("board_id", boardID.String()))
	}

	s.cache.Evict(ctx, boardID)
	s.log(ctx).Info("column created",
		slog.String("column_id", col.ID.String()),
		slog.String("board_id", boardID.String()),
		slog.Int("position", col.Position))
	return col, nil
}

func (s *columnService) Update(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	patch ColumnPatch,
) (*domain.Column, error) {
	var col *domain.Column
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).ColumnOwner, id); err != nil {
			return err
		}
		columns := s.stores.Columns.WithTx(tx)
		var err error
		if col, err = columns.GetByID(ctx, id); err != nil {
			return err
		}
		if patch.Name.Set {
			col.Name = strings.TrimSpace(patch.Name.Value)
		}
		if patch.Color.Set {
			col.Color = patch.Color.Value
		}
		return columns.Update(ctx, col)
	})
	if err != nil {
		return nil, s.fail(ctx, "update_column", "failed to update column", err,
			slog.String("column_id", id.String()))
	}

	s.cache.Evict(ctx, col.BoardID)
	return col, nil
}

func (s *columnService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	var removed ordering.Placement
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).ColumnOwner, id); err != nil {
			return err
		}
		var err error
		removed, err = ordering.RemoveAt(ctx, s.stores.ColumnList(tx), id)
		return err
	})
	if err != nil {
		return s.fail(ctx, "delete_column", "failed to delete column", err,
			slog.String("column_id", id.String()))
	}

	s.cache.Evict(ctx, removed.Parent)
	s.log(ctx).Info("column deleted",
		slog.String("column_id", id.String()),
		slog.String("board_id", removed.Parent.String()),
		slog.Int("position", removed.Position))
	return nil
}

func (s *columnService) Reorder(
	ctx context.Context,
	actor domain.Actor,
	boardID uuid.UUID,
	ids []uuid.UUID,
) ([]domain.Column, error) {
	var columns []domain.Column
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).BoardOwner, boardID); err != nil {
			return err
		}
		if err := ordering.Reorder(ctx, s.stores.ColumnList(tx), boardID, ids); err != nil {
			return err
		}
		var err error
		columns, err = s.stores.Columns.WithTx(tx).ListByBoard(ctx, boardID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "reorder_columns", "failed to reorder columns", err,
			slog.String("board_id", boardID.String()),
			slog.Int("columns", len(ids)))
	}

	s.cache.Evict(ctx, boardID)
	return columns, nil
}
