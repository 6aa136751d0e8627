package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/ordering"
	"github.com/taskify/taskify-api/internal/store"
)

// BoardInput holds the fields of a new board.
type BoardInput struct {
	Name string `json:"name" validate:"required,max=100"`
	// CreateDefaultColumns adds To Do, In Progress and Done. Defaults to true.
	CreateDefaultColumns *bool `json:"createDefaultColumns"`
}

// BoardService manages boards and renders the full board view.
type BoardService interface {
	ListByProject(ctx context.Context, actor domain.Actor, projectID uuid.UUID) ([]domain.Board, error)

	// Create adds a board to projectID, with the default columns unless
	// the input opts out, and returns its view.
	Create(ctx context.Context, actor domain.Actor, projectID uuid.UUID, in BoardInput) (*domain.BoardView, error)

	// View returns the board with its columns and tasks in position order.
	View(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.BoardView, error)

	Rename(ctx context.Context, actor domain.Actor, id uuid.UUID, name string) (*domain.Board, error)

	// Delete removes the board with its columns and tasks. Only the project
	// owner or an ADMIN may delete.
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type boardService struct {
	base
}

// NewBoardService creates a BoardService.
func NewBoardService(d Deps) BoardService {
	return &boardService{base: newBase(d, "board_service")}
}

func (s *boardService) ListByProject(ctx context.Context, actor domain.Actor, projectID uuid.UUID) ([]domain.Board, error) {
	if err := authorize(ctx, actor, s.policy, s.stores.Ownership.ProjectOwner, projectID); err != nil {
		return nil, s.fail(ctx, "list_boards", "project not accessible", err,
			slog.String("project_id", projectID.String()))
	}
	boards, err := s.stores.Boards.ListByProject(ctx, projectID)
	if err != nil {
		return nil, s.fail(ctx, "list_boards", "failed to list boards", err,
			slog.String("project_id", projectID.String()))
	}
	return boards, nil
}

func (s *boardService) Create(
	ctx context.Context,
	actor domain.Actor,
	projectID uuid.UUID,
	in BoardInput,
) (*domain.BoardView, error) {
	board, err := domain.NewBoard(projectID, in.Name)
	if err != nil {
		return nil, s.fail(ctx, "create_board", "invalid board", err)
	}
	withDefaults := in.CreateDefaultColumns == nil || *in.CreateDefaultColumns

	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).ProjectOwner, projectID); err != nil {
			return err
		}
		if err := s.stores.Boards.WithTx(tx).Create(ctx, board); err != nil {
			return err
		}
		if !withDefaults {
			return nil
		}

		columns := s.stores.Columns.WithTx(tx)
		list := s.stores.ColumnList(tx)
		for _, tmpl := range domain.DefaultColumns {
			col, err := domain.NewColumn(board.ID, tmpl.Name, tmpl.Color)
			if err != nil {
				return err
			}
			if _, err := ordering.Append(ctx, list, board.ID, insertColumn(columns, col)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "create_board", "failed to create board", err,
			slog.String("project_id", projectID.String()))
	}

	s.log(ctx).Info("board created",
		slog.String("board_id", board.ID.String()),
		slog.String("project_id", projectID.String()),
		slog.Bool("default_columns", withDefaults))
	return s.load(ctx, "create_board", board.ID)
}

func (s *boardService) View(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.BoardView, error) {
	view, ok := s.cache.Get(ctx, id)
	if !ok {
		var err error
		if view, err = s.load(ctx, "view_board", id); err != nil {
			return nil, err
		}
	}
	if !s.policy(actor, view.Project.OwnerID) {
		return nil, s.fail(ctx, "view_board", "board not accessible", ErrForbidden,
			slog.String("board_id", id.String()))
	}
	return view, nil
}

// load reads a board view from the store and caches it.
func (s *boardService) load(ctx context.Context, op string, id uuid.UUID) (*domain.BoardView, error) {
	view, err := s.stores.Boards.View(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load board", err, slog.String("board_id", id.String()))
	}
	s.cache.Set(ctx, view)
	return view, nil
}

func (s *boardService) Rename(ctx context.Context, actor domain.Actor, id uuid.UUID, name string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.fail(ctx, "rename_board", "invalid board",
			domain.NewValidationError("name", "cannot be empty", domain.ErrEmptyBoardName))
	}

	var board *domain.Board
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).BoardOwner, id); err != nil {
			return err
		}
		boards := s.stores.Boards.WithTx(tx)
		if err := boards.Rename(ctx, id, name); err != nil {
			return err
		}
		var err error
		board, err = boards.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "rename_board", "failed to rename board", err,
			slog.String("board_id", id.String()))
	}

	s.cache.Evict(ctx, id)
	return board, nil
}

func (s *boardService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, domain.CanDelete, s.stores.Ownership.WithTx(tx).BoardOwner, id); err != nil {
			return err
		}
		return s.stores.Boards.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, "delete_board", "failed to delete board", err,
			slog.String("board_id", id.String()))
	}

	s.cache.Evict(ctx, id)
	s.log(ctx).Info("board deleted", slog.String("board_id", id.String()))
	return nil
}

// insertColumn stores col at the position the ordering engine hands out.
func insertColumn(columns store.ColumnStore, col *domain.Column) ordering.CreateFunc {
	return func(ctx context.Context, position int) error {
		col.Position = position
		return columns.Insert(ctx, col)
	}
}
