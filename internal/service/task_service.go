package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/events"
	"github.com/taskify/taskify-api/internal/ordering"
	"github.com/taskify/taskify-api/internal/store"
)

// TaskInput holds the fields of a new task.
type TaskInput struct {
	ColumnID    uuid.UUID       `json:"columnId" validate:"required"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	Priority    domain.Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     *time.Time      `json:"dueDate"`
	AssigneeID  *uuid.UUID      `json:"assigneeId"`
	LabelID     *uuid.UUID      `json:"labelId"`
}

// TaskPatch holds the fields of a task update. Unset fields are kept; a
// field set to null is cleared.
type TaskPatch struct {
	Title       domain.Optional[string]          `json:"title"`
	Description domain.Optional[*string]         `json:"description"`
	Priority    domain.Optional[domain.Priority] `json:"priority"`
	DueDate     domain.Optional[*time.Time]      `json:"dueDate"`
	AssigneeID  domain.Optional[*uuid.UUID]      `json:"assigneeId"`
	LabelID     domain.Optional[*uuid.UUID]      `json:"labelId"`
}

// TaskMove is the destination of a task move.
type TaskMove struct {
	ColumnID uuid.UUID `json:"columnId" validate:"required"`
	Position int       `json:"position" validate:"min=0"`
}

// TaskListParams filters and pages a task listing. Zero values mean no filter.
type TaskListParams struct {
	Page      int
	PageSize  int
	Search    string
	Priority  domain.Priority
	ColumnID  uuid.UUID
	BoardID   uuid.UUID
	ProjectID uuid.UUID
	Due       domain.DueFilter
}

// TaskService manages tasks and their order within columns.
type TaskService interface {
	// List returns the tasks visible to actor that match params. USER
	// actors only see tasks in their own projects.
	List(ctx context.Context, actor domain.Actor, params TaskListParams) (domain.PageResult[domain.Task], error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Task, error)

	// Create inserts a task at the top of its column.
	Create(ctx context.Context, actor domain.Actor, in TaskInput) (*domain.Task, error)

	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch TaskPatch) (*domain.Task, error)

	// Delete removes the task and closes the gap it leaves in its column.
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error

	// Move places the task at a position in a column, possibly on another
	// board the actor can access, and returns it at its final placement.
	Move(ctx context.Context, actor domain.Actor, id uuid.UUID, to TaskMove) (*domain.Task, error)
}

type taskService struct {
	base
	now func() time.Time
}

// NewTaskService creates a TaskService.
func NewTaskService(d Deps) TaskService {
	return &taskService{
		base: newBase(d, "task_service"),
		now:  time.Now,
	}
}

func (s *taskService) List(
	ctx context.Context,
	actor domain.Actor,
	params TaskListParams,
) (domain.PageResult[domain.Task], error) {
	if params.Priority != "" && !params.Priority.IsValid() {
		return domain.PageResult[domain.Task]{}, s.fail(ctx, "list_tasks", "invalid filter",
			domain.NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH, URGENT", nil))
	}
	if !params.Due.IsValid() {
		return domain.PageResult[domain.Task]{}, s.fail(ctx, "list_tasks", "invalid filter",
			domain.NewValidationError("dueDate", "must be one of overdue, today, week", nil))
	}

	page := domain.NormalizePage(params.Page, params.PageSize, defaultTaskPageSize, maxPageSize)
	q := store.TaskQuery{
		Search:    strings.TrimSpace(params.Search),
		Priority:  params.Priority,
		ColumnID:  params.ColumnID,
		BoardID:   params.BoardID,
		ProjectID: params.ProjectID,
		Page:      page,
	}
	q.DueFrom, q.DueTo = params.Due.Window(s.now().UTC())
	if !actor.Role.Privileged() {
		q.OwnerID = actor.UserID
	}

	tasks, total, err := s.stores.Tasks.List(ctx, q)
	if err != nil {
		return domain.PageResult[domain.Task]{}, s.fail(ctx, "list_tasks", "failed to list tasks", err)
	}
	return domain.NewPageResult(tasks, page, total), nil
}

func (s *taskService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Task, error) {
	if err := authorize(ctx, actor, s.policy, s.stores.Ownership.TaskOwner, id); err != nil {
		return nil, s.fail(ctx, "get_task", "task not accessible", err, slog.String("task_id", id.String()))
	}
	return s.reload(ctx, "get_task", id)
}

// taskScope locates a column within the project tree.
type taskScope struct {
	BoardID     uuid.UUID
	ProjectID   uuid.UUID
	ProjectName string
}

func (s *taskService) scopeOf(ctx context.Context, tx *sql.Tx, columnID uuid.UUID) (taskScope, error) {
	col, err := s.stores.Columns.WithTx(tx).GetByID(ctx, columnID)
	if err != nil {
		return taskScope{}, err
	}
	board, err := s.stores.Boards.WithTx(tx).GetByID(ctx, col.BoardID)
	if err != nil {
		return taskScope{}, err
	}
	project, err := s.stores.Projects.WithTx(tx).GetByID(ctx, board.ProjectID)
	if err != nil {
		return taskScope{}, err
	}
	return taskScope{BoardID: board.ID, ProjectID: project.ID, ProjectName: project.Name}, nil
}

// checkRefs verifies that the assignee exists and that the label belongs to
// the task's project.
func (s *taskService) checkRefs(ctx context.Context, tx *sql.Tx, scope taskScope, assignee, label uuid.NullUUID) error {
	if assignee.Valid {
		if _, err := s.stores.Users.WithTx(tx).GetByID(ctx, assignee.UUID); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return domain.NewValidationError("assigneeId", "does not reference a user", nil)
			}
			return err
		}
	}
	if label.Valid {
		l, err := s.stores.Labels.WithTx(tx).GetByID(ctx, label.UUID)
		if err != nil {
			if errors.Is(err, store.ErrLabelNotFound) {
				return domain.NewValidationError("labelId", "does not reference a label", nil)
			}
			return err
		}
		if l.ProjectID != scope.ProjectID {
			return domain.NewValidationError("labelId", "belongs to another project", nil)
		}
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, actor domain.Actor, in TaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(in.ColumnID, actor.UserID, domain.TaskFields{
		Title:       in.Title,
		Description: trimOptional(in.Description),
		Priority:    in.Priority,
		DueDate:     utcTime(in.DueDate),
		AssigneeID:  nullUUID(in.AssigneeID),
		LabelID:     nullUUID(in.LabelID),
	})
	if err != nil {
		return nil, s.fail(ctx, "create_task", "invalid task", err)
	}

	var scope taskScope
	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).ColumnOwner, in.ColumnID); err != nil {
			return err
		}
		var err error
		if scope, err = s.scopeOf(ctx, tx, in.ColumnID); err != nil {
			return err
		}
		if err := s.checkRefs(ctx, tx, scope, task.AssigneeID, task.LabelID); err != nil {
			return err
		}

		tasks := s.stores.Tasks.WithTx(tx)
		return ordering.InsertAt(ctx, s.stores.TaskList(tx), in.ColumnID, 0,
			func(ctx context.Context, position int) error {
				task.Position = position
				return tasks.Insert(ctx, task)
			})
	})
	if err != nil {
		return nil, s.fail(ctx, "create_task", "failed to create task", err,
			slog.String("column_id", in.ColumnID.String()))
	}

	s.cache.Evict(ctx, scope.BoardID)
	s.log(ctx).Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("column_id", in.ColumnID.String()))

	s.notifyAssignment(ctx, actor, task, uuid.NullUUID{}, scope)
	return s.reload(ctx, "create_task", task.ID)
}

func (s *taskService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch TaskPatch) (*domain.Task, error) {
	var (
		task     *domain.Task
		previous uuid.NullUUID
		scope    taskScope
	)
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).TaskOwner, id); err != nil {
			return err
		}
		tasks := s.stores.Tasks.WithTx(tx)
		var err error
		if task, err = tasks.GetByID(ctx, id); err != nil {
			return err
		}
		previous = task.AssigneeID
		applyTaskPatch(task, patch)

		if scope, err = s.scopeOf(ctx, tx, task.ColumnID); err != nil {
			return err
		}
		var assignee, label uuid.NullUUID
		if patch.AssigneeID.Set {
			assignee = task.AssigneeID
		}
		if patch.LabelID.Set {
			label = task.LabelID
		}
		if err := s.checkRefs(ctx, tx, scope, assignee, label); err != nil {
			return err
		}
		return tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, s.fail(ctx, "update_task", "failed to update task", err, slog.String("task_id", id.String()))
	}

	s.cache.Evict(ctx, scope.BoardID)
	s.notifyAssignment(ctx, actor, task, previous, scope)
	return s.reload(ctx, "update_task", id)
}

func applyTaskPatch(task *domain.Task, patch TaskPatch) {
	if patch.Title.Set {
		task.Title = strings.TrimSpace(patch.Title.Value)
	}
	if patch.Description.Set {
		task.Description = trimOptional(patch.Description.Value)
	}
	if patch.Priority.Set {
		task.Priority = patch.Priority.Value
	}
	if patch.DueDate.Set {
		task.DueDate = utcTime(patch.DueDate.Value)
	}
	if patch.AssigneeID.Set {
		task.AssigneeID = nullUUID(patch.AssigneeID.Value)
	}
	if patch.LabelID.Set {
		task.LabelID = nullUUID(patch.LabelID.Value)
	}
}

func (s *taskService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	var boardID uuid.UUID
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).TaskOwner, id); err != nil {
			return err
		}
		removed, err := ordering.RemoveAt(ctx, s.stores.TaskList(tx), id)
		if err != nil {
			return err
		}
		col, err := s.stores.Columns.WithTx(tx).GetByID(ctx, removed.Parent)
		if err != nil {
			return err
		}
		boardID = col.BoardID
		return nil
	})
	if err != nil {
		return s.fail(ctx, "delete_task", "failed to delete task", err, slog.String("task_id", id.String()))
	}

	s.cache.Evict(ctx, boardID)
	s.log(ctx).Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

func (s *taskService) Move(ctx context.Context, actor domain.Actor, id uuid.UUID, to TaskMove) (*domain.Task, error) {
	var from, dest taskScope
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		owners := s.stores.Ownership.WithTx(tx)
		if err := authorize(ctx, actor, s.policy, owners.TaskOwner, id); err != nil {
			return err
		}
		if err := authorize(ctx, actor, s.policy, owners.ColumnOwner, to.ColumnID); err != nil {
			return err
		}

		task, err := s.stores.Tasks.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		if from, err = s.scopeOf(ctx, tx, task.ColumnID); err != nil {
			return err
		}
		if dest, err = s.scopeOf(ctx, tx, to.ColumnID); err != nil {
			return err
		}
		if task.LabelID.Valid && from.ProjectID != dest.ProjectID {
			return domain.NewValidationError("columnId", "is in another project than the task's label", nil)
		}

		_, err = ordering.MoveTo(ctx, s.stores.TaskList(tx), id, to.ColumnID, to.Position)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "move_task", "failed to move task", err,
			slog.String("task_id", id.String()),
			slog.String("column_id", to.ColumnID.String()),
			slog.Int("position", to.Position))
	}

	s.cache.Evict(ctx, from.BoardID, dest.BoardID)
	s.log(ctx).Debug("task moved",
		slog.String("task_id", id.String()),
		slog.String("column_id", to.ColumnID.String()),
		slog.Int("position", to.Position))
	return s.reload(ctx, "move_task", id)
}

// reload fetches a task with its read-side projections after a write.
func (s *taskService) reload(ctx context.Context, op string, id uuid.UUID) (*domain.Task, error) {
	task, err := s.stores.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load task", err, slog.String("task_id", id.String()))
	}
	return task, nil
}

// notifyAssignment emits task.assigned when the task gained a new assignee
// other than the actor. Failures are logged and never surface to the caller.
func (s *taskService) notifyAssignment(
	ctx context.Context,
	actor domain.Actor,
	task *domain.Task,
	previous uuid.NullUUID,
	scope taskScope,
) {
	if !task.AssigneeID.Valid || task.AssigneeID == previous || task.AssigneeID.UUID == actor.UserID {
		return
	}

	payload := events.TaskAssigned{
		TaskID:      task.ID,
		TaskTitle:   task.Title,
		AssigneeID:  task.AssigneeID.UUID,
		ActorID:     actor.UserID,
		BoardID:     scope.BoardID,
		ProjectName: scope.ProjectName,
	}
	if user, err := s.stores.Users.GetByID(ctx, actor.UserID); err == nil {
		payload.ActorName = user.Name
	}

	log := s.log(ctx).With(
		slog.String("task_id", task.ID.String()),
		slog.String("assignee_id", task.AssigneeID.UUID.String()))
	event, err := events.NewTaskAssignedEvent(payload)
	if err != nil {
		log.Error("failed to build assignment event", slog.String("error", err.Error()))
		return
	}
	if err := s.events.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit assignment event", slog.String("error", err.Error()))
	}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil || *id == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
