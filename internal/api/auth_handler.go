package api

import (
	"log/slog"
	"net/http"

	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/platform/logger"
	"github.com/taskify/taskify-api/internal/service"
)

// AuthHandler serves registration, login and the current user.
type AuthHandler struct {
	users service.UserService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	logger.FromContext(r.Context()).Info("user registered", slog.String("user_id", session.User.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{Token: session.Token, User: session.User})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{Token: session.Token, User: session.User})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), actor.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}
