package api

import (
	"log/slog"
	"net/http"

	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/service"
)

// TaskHandler serves /tasks.
type TaskHandler struct {
	tasks service.TaskService
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /tasks with the filters q, priority, columnId, boardId,
// projectId and dueDate.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	params, err := taskListParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.tasks.List(r.Context(), actor, params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

func taskListParams(r *http.Request) (service.TaskListParams, error) {
	var (
		p   service.TaskListParams
		err error
	)
	if p.Page, p.PageSize, err = pageParams(r); err != nil {
		return p, err
	}
	if p.ColumnID, err = queryUUID(r, "columnId"); err != nil {
		return p, err
	}
	if p.BoardID, err = queryUUID(r, "boardId"); err != nil {
		return p, err
	}
	if p.ProjectID, err = queryUUID(r, "projectId"); err != nil {
		return p, err
	}
	q := r.URL.Query()
	p.Search = q.Get("q")
	p.Priority = domain.Priority(q.Get("priority"))
	p.Due = domain.DueFilter(q.Get("dueDate"))
	return p, nil
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	task, err := h.tasks.Get(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Create handles POST /tasks. The task is placed at the top of its column.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in service.TaskInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	task, err := h.tasks.Create(r.Context(), actor, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var patch service.TaskPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}
	task, err := h.tasks.Update(r.Context(), actor, id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	shared.RespondNoContent(w)
}

// Move handles PATCH /tasks/{id}/move.
func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var to service.TaskMove
	if !decodeAndValidate(w, r, &to) {
		return
	}
	task, err := h.tasks.Move(r.Context(), actor, id, to)
	if err != nil {
		logFailure(r, "task move rejected", err,
			slog.String("task_id", id.String()),
			slog.String("column_id", to.ColumnID.String()),
			slog.Int("position", to.Position))
		HandleAPIError(w, r, err, "Failed to move task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}
