package api

import (
	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/service"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Name     string `json:"name"     validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by the register and login endpoints.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// RenameBoardRequest is the body of PUT /boards/{id}.
type RenameBoardRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ReorderColumnsRequest is the body of PUT /boards/{boardId}/columns/reorder.
type ReorderColumnsRequest struct {
	ColumnIDs []uuid.UUID `json:"columnIds" validate:"required"`
}

// CreateLabelRequest is the body of POST /labels.
type CreateLabelRequest struct {
	ProjectID uuid.UUID `json:"projectId" validate:"required"`
	service.LabelInput
}

// MarkAllReadResponse is returned by PATCH /notifications/read-all.
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
