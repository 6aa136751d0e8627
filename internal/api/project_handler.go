package api

import (
	"net/http"

	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/service"
)

// ProjectHandler serves /projects.
type ProjectHandler struct {
	projects service.ProjectService
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projects service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List handles GET /projects?page=&pageSize=&q=.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	page, pageSize, err := pageParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.projects.List(r.Context(), actor, service.ProjectListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   r.URL.Query().Get("q"),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list projects")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Get handles GET /projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	project, err := h.projects.Get(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in service.ProjectInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	project, err := h.projects.Create(r.Context(), actor, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, project)
}

// Update handles PUT /projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var patch service.ProjectPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}
	project, err := h.projects.Update(r.Context(), actor, id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// Delete handles DELETE /projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete project")
		return
	}
	shared.RespondNoContent(w)
}
