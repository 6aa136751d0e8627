package api

import (
	"net/http"

	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/service"
)

// BoardHandler serves boards and their columns.
type BoardHandler struct {
	boards  service.BoardService
	columns service.ColumnService
}

// NewBoardHandler creates a BoardHandler.
func NewBoardHandler(boards service.BoardService, columns service.ColumnService) *BoardHandler {
	return &BoardHandler{boards: boards, columns: columns}
}

// ListByProject handles GET /projects/{projectId}/boards.
func (h *BoardHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := actorAndPathUUID(w, r, "projectId")
	if !ok {
		return
	}
	boards, err := h.boards.ListByProject(r.Context(), actor, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list boards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, boards)
}

// Create handles POST /projects/{projectId}/boards.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := actorAndPathUUID(w, r, "projectId")
	if !ok {
		return
	}
	var in service.BoardInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	view, err := h.boards.Create(r.Context(), actor, projectID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create board")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, view)
}

// View handles GET /boards/{id}.
func (h *BoardHandler) View(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.boards.View(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load board")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// Rename handles PUT /boards/{id}.
func (h *BoardHandler) Rename(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req RenameBoardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	board, err := h.boards.Rename(r.Context(), actor, id, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename board")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// Delete handles DELETE /boards/{id}.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.boards.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete board")
		return
	}
	shared.RespondNoContent(w)
}

// ListColumns handles GET /boards/{boardId}/columns.
func (h *BoardHandler) ListColumns(w http.ResponseWriter, r *http.Request) {
	actor, boardID, ok := actorAndPathUUID(w, r, "boardId")
	if !ok {
		return
	}
	columns, err := h.columns.List(r.Context(), actor, boardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list columns")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, columns)
}

// CreateColumn handles POST /boards/{boardId}/columns. The column is
// appended after the existing ones.
func (h *BoardHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	actor, boardID, ok := actorAndPathUUID(w, r, "boardId")
	if !ok {
		return
	}
	var in service.ColumnInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	column, err := h.columns.Create(r.Context(), actor, boardID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create column")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, column)
}

// ReorderColumns handles PUT /boards/{boardId}/columns/reorder.
func (h *BoardHandler) ReorderColumns(w http.ResponseWriter, r *http.Request) {
	actor, boardID, ok := actorAndPathUUID(w, r, "boardId")
	if !ok {
		return
	}
	var req ReorderColumnsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	columns, err := h.columns.Reorder(r.Context(), actor, boardID, req.ColumnIDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reorder columns")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, columns)
}
