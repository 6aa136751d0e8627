package api

import (
	"net/http"

	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/service"
)

// NotificationHandler serves the current user's notifications.
type NotificationHandler struct {
	notifications service.NotificationService
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	page, pageSize, err := pageParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	result, err := h.notifications.List(r.Context(), actor, page, pageSize)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// MarkRead handles PATCH /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.notifications.MarkRead(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update notification")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, n)
}

// MarkAllRead handles PATCH /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	updated, err := h.notifications.MarkAllRead(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MarkAllReadResponse{Updated: updated})
}

// Delete handles DELETE /notifications/{id}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete notification")
		return
	}
	shared.RespondNoContent(w)
}
