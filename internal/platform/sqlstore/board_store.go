package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/store"
)

// BoardStore implements store.BoardStore.
type BoardStore struct {
	db store.DBTX
}

func NewBoardStore(db store.DBTX) *BoardStore {
	return &BoardStore{db: db}
}

var _ store.BoardStore = (*BoardStore)(nil)

func (s *BoardStore) Create(ctx context.Context, b *domain.Board) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boards (id, project_id, name, column_order_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.ProjectID, b.Name, b.ColumnOrderVersion, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return store.NewStoreError("board", "create", "failed to insert board", MapError(err))
	}
	return nil
}

const boardSelect = `
	SELECT b.id, b.project_id, b.name, b.column_order_version, b.created_at, b.updated_at,
	       (SELECT COUNT(*) FROM board_columns c WHERE c.board_id = b.id)
	FROM boards b`

func (s *BoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	b, err := scanBoard(s.db.QueryRowContext(ctx, boardSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrBoardNotFound)
	}
	return b, nil
}

func (s *BoardStore) Rename(ctx context.Context, id uuid.UUID, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE boards SET name = $1, updated_at = $2 WHERE id = $3`, name, now(), id)
	if err != nil {
		return store.NewStoreError("board", "rename", "failed to rename board", MapError(err))
	}
	return checkRowsAffected(result, store.ErrBoardNotFound)
}

func (s *BoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("board", "delete", "failed to delete board", MapError(err))
	}
	return checkRowsAffected(result, store.ErrBoardNotFound)
}

func (s *BoardStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Board, error) {
	rows, err := s.db.QueryContext(ctx,
		boardSelect+` WHERE b.project_id = $1 ORDER BY b.created_at DESC, b.id`, projectID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	boards := []domain.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return boards, nil
}

// View loads the board, its project reference, its columns and tasks in
// position order, and the labels of its project. Run it inside a transaction
// for a consistent snapshot.
func (s *BoardStore) View(ctx context.Context, id uuid.UUID) (*domain.BoardView, error) {
	var v domain.BoardView
	err := s.db.QueryRowContext(ctx, `
		SELECT b.id, b.project_id, b.name, b.column_order_version, b.created_at, b.updated_at,
		       p.id, p.owner_id, p.name, p.color
		FROM boards b
		JOIN projects p ON p.id = b.project_id
		WHERE b.id = $1`, id).Scan(
		&v.ID, &v.ProjectID, &v.Name, &v.ColumnOrderVersion, &v.CreatedAt, &v.UpdatedAt,
		&v.Project.ID, &v.Project.OwnerID, &v.Project.Name, &v.Project.Color)
	if err != nil {
		return nil, mapNotFound(err, store.ErrBoardNotFound)
	}

	columns, err := NewColumnStore(s.db).ListByBoard(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks, err := NewTaskStore(s.db).listByBoard(ctx, id)
	if err != nil {
		return nil, err
	}

	byColumn := make(map[uuid.UUID][]domain.Task, len(columns))
	for _, t := range tasks {
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], t)
	}

	v.Columns = make([]domain.ColumnView, 0, len(columns))
	for _, c := range columns {
		cv := domain.ColumnView{Column: c, Tasks: byColumn[c.ID]}
		if cv.Tasks == nil {
			cv.Tasks = []domain.Task{}
		}
		v.Columns = append(v.Columns, cv)
	}
	v.ColumnCount = len(columns)

	v.Labels, err = NewLabelStore(s.db).ListByProject(ctx, v.ProjectID)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (s *BoardStore) WithTx(tx *sql.Tx) store.BoardStore {
	return &BoardStore{db: tx}
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	var b domain.Board
	err := row.Scan(&b.ID, &b.ProjectID, &b.Name, &b.ColumnOrderVersion, &b.CreatedAt, &b.UpdatedAt,
		&b.ColumnCount)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ColumnStore implements store.ColumnStore.
type ColumnStore struct {
	db store.DBTX
}

func NewColumnStore(db store.DBTX) *ColumnStore {
	return &ColumnStore{db: db}
}

var _ store.ColumnStore = (*ColumnStore)(nil)

func (s *ColumnStore) Insert(ctx context.Context, c *domain.Column) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_columns (id, board_id, name, color, position, task_order_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.BoardID, c.Name, c.Color, c.Position, c.TaskOrderVersion, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return store.NewStoreError("column", "create", "failed to insert column",
			mapNotFound(err, store.ErrBoardNotFound))
	}
	return nil
}

const columnSelect = `
	SELECT c.id, c.board_id, c.name, c.color, c.position, c.task_order_version, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM tasks t WHERE t.column_id = c.id)
	FROM board_columns c`

func (s *ColumnStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	c, err := scanColumn(s.db.QueryRowContext(ctx, columnSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrColumnNotFound)
	}
	return c, nil
}

func (s *ColumnStore) Update(ctx context.Context, c *domain.Column) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.UpdatedAt = now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE board_columns SET name = $1, color = $2, updated_at = $3 WHERE id = $4`,
		c.Name, c.Color, c.UpdatedAt, c.ID)
	if err != nil {
		return store.NewStoreError("column", "update", "failed to update column", MapError(err))
	}
	return checkRowsAffected(result, store.ErrColumnNotFound)
}

func (s *ColumnStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]domain.Column, error) {
	rows, err := s.db.QueryContext(ctx,
		columnSelect+` WHERE c.board_id = $1 ORDER BY c.position`, boardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	columns := []domain.Column{}
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return columns, nil
}

func (s *ColumnStore) WithTx(tx *sql.Tx) store.ColumnStore {
	return &ColumnStore{db: tx}
}

func scanColumn(row rowScanner) (*domain.Column, error) {
	var c domain.Column
	err := row.Scan(&c.ID, &c.BoardID, &c.Name, &c.Color, &c.Position, &c.TaskOrderVersion,
		&c.CreatedAt, &c.UpdatedAt, &c.TaskCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
