package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/service"
)

// LabelHandler serves /labels.
type LabelHandler struct {
	labels service.LabelService
}

// NewLabelHandler creates a LabelHandler.
func NewLabelHandler(labels service.LabelService) *LabelHandler {
	return &LabelHandler{labels: labels}
}

// List handles GET /labels?projectId=.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, err := queryUUID(r, "projectId")
	if err == nil && projectID == uuid.Nil {
		err = domain.NewValidationError("projectId", "is required", domain.ErrValidation)
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	labels, err := h.labels.ListByProject(r.Context(), actor, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list labels")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, labels)
}

// Create handles POST /labels.
func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req CreateLabelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	label, err := h.labels.Create(r.Context(), actor, req.ProjectID, req.LabelInput)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create label")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, label)
}

// Update handles PUT /labels/{id}.
func (h *LabelHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var patch service.LabelPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}
	label, err := h.labels.Update(r.Context(), actor, id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update label")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, label)
}

// Delete handles DELETE /labels/{id}?force=. Without force a label that is
// still attached to tasks is refused with 409 and its task count.
func (h *LabelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		var err error
		if force, err = strconv.ParseBool(raw); err != nil {
			HandleAPIError(w, r, domain.NewValidationError("force", "must be a boolean", domain.ErrInvalidFormat), "")
			return
		}
	}

	if err := h.labels.Delete(r.Context(), actor, id, force); err != nil {
		HandleAPIError(w, r, err, "Failed to delete label")
		return
	}
	shared.RespondNoContent(w)
}
