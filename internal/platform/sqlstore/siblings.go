package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/ordering"
	"github.com/taskify/taskify-api/internal/store"
)

// siblingTable names the columns of one kind of ordered child table.
type siblingTable struct {
	table         string // child table, e.g. tasks
	parentColumn  string // foreign key to the parent, e.g. column_id
	parentTable   string // e.g. board_columns
	versionColumn string // order version on the parent row

	itemNotFound   error
	parentNotFound error
}

var (
	taskSiblings = siblingTable{
		table:          "tasks",
		parentColumn:   "column_id",
		parentTable:    "board_columns",
		versionColumn:  "task_order_version",
		itemNotFound:   store.ErrTaskNotFound,
		parentNotFound: store.ErrColumnNotFound,
	}
	columnSiblings = siblingTable{
		table:          "board_columns",
		parentColumn:   "board_id",
		parentTable:    "boards",
		versionColumn:  "column_order_version",
		itemNotFound:   store.ErrColumnNotFound,
		parentNotFound: store.ErrBoardNotFound,
	}
)

// siblingList implements ordering.List over a siblingTable. Identifiers are
// fixed at compile time; only values are bound as parameters.
type siblingList struct {
	db store.DBTX
	t  siblingTable
}

// NewTaskList returns the ordering.List of tasks within columns.
func NewTaskList(db store.DBTX) ordering.List {
	return &siblingList{db: db, t: taskSiblings}
}

// NewColumnList returns the ordering.List of columns within boards.
func NewColumnList(db store.DBTX) ordering.List {
	return &siblingList{db: db, t: columnSiblings}
}

var _ ordering.List = (*siblingList)(nil)

func (l *siblingList) LockParent(ctx context.Context, parent uuid.UUID) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = %s + 1 WHERE id = $1 RETURNING %s`,
		l.t.parentTable, l.t.versionColumn, l.t.versionColumn, l.t.versionColumn)

	var version int64
	if err := l.db.QueryRowContext(ctx, query, parent).Scan(&version); err != nil {
		return 0, mapNotFound(err, l.t.parentNotFound)
	}
	return version, nil
}

func (l *siblingList) Count(ctx context.Context, parent uuid.UUID) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, l.t.table, l.t.parentColumn)

	var n int
	if err := l.db.QueryRowContext(ctx, query, parent).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

func (l *siblingList) Locate(ctx context.Context, item uuid.UUID) (ordering.Placement, error) {
	query := fmt.Sprintf(`SELECT %s, position FROM %s WHERE id = $1`, l.t.parentColumn, l.t.table)

	var p ordering.Placement
	if err := l.db.QueryRowContext(ctx, query, item).Scan(&p.Parent, &p.Position); err != nil {
		return ordering.Placement{}, mapNotFound(err, l.t.itemNotFound)
	}
	return p, nil
}

func (l *siblingList) Shift(ctx context.Context, parent uuid.UUID, span ordering.Span, delta int) error {
	if span.From > span.To {
		return nil
	}
	query := fmt.Sprintf(
		`UPDATE %s SET position = position + $1 WHERE %s = $2 AND position BETWEEN $3 AND $4`,
		l.t.table, l.t.parentColumn)

	if _, err := l.db.ExecContext(ctx, query, delta, parent, span.From, span.To); err != nil {
		return store.NewStoreError(l.t.table, "shift", "failed to shift positions", MapError(err))
	}
	return nil
}

func (l *siblingList) Place(ctx context.Context, item, parent uuid.UUID, position int) error {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = $1, position = $2, updated_at = $3 WHERE id = $4`,
		l.t.table, l.t.parentColumn)

	result, err := l.db.ExecContext(ctx, query, parent, position, now(), item)
	if err != nil {
		return store.NewStoreError(l.t.table, "place", "failed to set position", MapError(err))
	}
	return checkRowsAffected(result, l.t.itemNotFound)
}

func (l *siblingList) Remove(ctx context.Context, item uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, l.t.table)

	result, err := l.db.ExecContext(ctx, query, item)
	if err != nil {
		return store.NewStoreError(l.t.table, "delete", "failed to delete", MapError(err))
	}
	return checkRowsAffected(result, l.t.itemNotFound)
}

func (l *siblingList) Members(ctx context.Context, parent uuid.UUID) ([]uuid.UUID, error) {
	query := fmt.Sprintf(
		`SELECT id FROM %s WHERE %s = $1 ORDER BY position`, l.t.table, l.t.parentColumn)

	rows, err := l.db.QueryContext(ctx, query, parent)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", l.t.table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}
