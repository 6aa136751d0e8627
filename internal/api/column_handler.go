package api

import (
	"net/http"

	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/service"
)

// ColumnHandler serves /columns/{id}.
type ColumnHandler struct {
	columns service.ColumnService
}

// NewColumnHandler creates a ColumnHandler.
func NewColumnHandler(columns service.ColumnService) *ColumnHandler {
	return &ColumnHandler{columns: columns}
}

// Update handles PUT /columns/{id}.
func (h *ColumnHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var patch service.ColumnPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}
	column, err := h.columns.Update(r.Context(), actor, id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update column")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, column)
}

// Delete handles DELETE /columns/{id}. The column's tasks go with it.
func (h *ColumnHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.columns.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete column")
		return
	}
	shared.RespondNoContent(w)
}
