package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/platform/logger"
	"github.com/taskify/taskify-api/internal/store"
)

// TaskStore implements store.TaskStore.
type TaskStore struct {
	db store.DBTX
}

func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

var _ store.TaskStore = (*TaskStore)(nil)

func (s *TaskStore) Insert(ctx context.Context, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, column_id, title, description, position, priority, due_date,
		                   created_by_id, assignee_id, label_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.ColumnID, t.Title, nullString(t.Description), t.Position, string(t.Priority),
		nullTime(t.DueDate), t.CreatedByID, t.AssigneeID, t.LabelID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		err = MapError(err)
		logger.FromContext(ctx).Warn("failed to insert task",
			slog.String("task_id", t.ID.String()),
			slog.String("column_id", t.ColumnID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "failed to insert task", err)
	}
	return nil
}

// taskSelect joins the creator, assignee and label projections.
const taskSelect = `
	SELECT t.id, t.column_id, t.title, t.description, t.position, t.priority, t.due_date,
	       t.created_by_id, t.assignee_id, t.label_id, t.created_at, t.updated_at,
	       cu.name, au.name, l.project_id, l.name, l.color, l.created_at
	FROM tasks t
	JOIN users cu ON cu.id = t.created_by_id
	LEFT JOIN users au ON au.id = t.assignee_id
	LEFT JOIN labels l ON l.id = t.label_id`

func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrTaskNotFound)
	}
	return t, nil
}

func (s *TaskStore) Update(ctx context.Context, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.UpdatedAt = now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, due_date = $4,
		    assignee_id = $5, label_id = $6, updated_at = $7
		WHERE id = $8`,
		t.Title, nullString(t.Description), string(t.Priority), nullTime(t.DueDate),
		t.AssigneeID, t.LabelID, t.UpdatedAt, t.ID)
	if err != nil {
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

func (s *TaskStore) List(ctx context.Context, q store.TaskQuery) ([]domain.Task, int, error) {
	var f filter
	if q.OwnerID != uuid.Nil {
		f.add("p.owner_id = ?", q.OwnerID)
	}
	if q.Search != "" {
		f.add(`(LOWER(t.title) LIKE LOWER(?) ESCAPE '\' OR LOWER(COALESCE(t.description, '')) LIKE LOWER(?) ESCAPE '\')`,
			containsPattern(q.Search))
	}
	if q.Priority != "" {
		f.add("t.priority = ?", string(q.Priority))
	}
	if q.ColumnID != uuid.Nil {
		f.add("t.column_id = ?", q.ColumnID)
	}
	if q.BoardID != uuid.Nil {
		f.add("c.board_id = ?", q.BoardID)
	}
	if q.ProjectID != uuid.Nil {
		f.add("b.project_id = ?", q.ProjectID)
	}
	if !q.DueFrom.IsZero() {
		f.add("t.due_date >= ?", q.DueFrom.UTC())
	}
	if !q.DueTo.IsZero() {
		f.add("t.due_date < ?", q.DueTo.UTC())
	}

	const scope = `
	JOIN board_columns c ON c.id = t.column_id
	JOIN boards b ON b.id = c.board_id
	JOIN projects p ON p.id = b.project_id`

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks t` + scope + f.where()
	if err := s.db.QueryRowContext(ctx, countQuery, f.args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}
	if total == 0 {
		return []domain.Task{}, 0, nil
	}

	where := f.where()
	limit := f.bind(q.Page.Size)
	offset := f.bind(q.Page.Offset())
	query := taskSelect + scope + where +
		fmt.Sprintf(` ORDER BY t.updated_at DESC, t.id LIMIT %s OFFSET %s`, limit, offset)

	tasks, err := s.query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// listByBoard returns every task on a board ordered by column position, then
// task position.
func (s *TaskStore) listByBoard(ctx context.Context, boardID uuid.UUID) ([]domain.Task, error) {
	return s.query(ctx, taskSelect+`
	JOIN board_columns c ON c.id = t.column_id
	WHERE c.board_id = $1
	ORDER BY c.position, t.position`, boardID)
}

func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx}
}

func (s *TaskStore) query(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t            domain.Task
		desc         sql.NullString
		priority     string
		due          sql.NullTime
		creatorName  string
		assigneeName sql.NullString
		labelProject uuid.NullUUID
		labelName    sql.NullString
		labelColor   sql.NullString
		labelCreated sql.NullTime
	)
	err := row.Scan(&t.ID, &t.ColumnID, &t.Title, &desc, &t.Position, &priority, &due,
		&t.CreatedByID, &t.AssigneeID, &t.LabelID, &t.CreatedAt, &t.UpdatedAt,
		&creatorName, &assigneeName, &labelProject, &labelName, &labelColor, &labelCreated)
	if err != nil {
		return nil, err
	}

	t.Description = stringPtr(desc)
	t.Priority = domain.Priority(priority)
	t.DueDate = timePtr(due)
	t.CreatedBy = &domain.UserRef{ID: t.CreatedByID, Name: creatorName}
	if t.AssigneeID.Valid && assigneeName.Valid {
		t.Assignee = &domain.UserRef{ID: t.AssigneeID.UUID, Name: assigneeName.String}
	}
	if t.LabelID.Valid && labelName.Valid {
		t.Label = &domain.Label{
			ID:        t.LabelID.UUID,
			ProjectID: labelProject.UUID,
			Name:      labelName.String,
			Color:     labelColor.String,
			CreatedAt: labelCreated.Time,
		}
	}
	return &t, nil
}
