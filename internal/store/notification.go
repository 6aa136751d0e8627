package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error

	// GetByID returns ErrNotificationNotFound if the notification does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	// List returns one page of a user's notifications, newest first, with the
	// total count and the unread count.
	List(ctx context.Context, userID uuid.UUID, page domain.Page) ([]domain.Notification, int, int, error)

	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead marks every unread notification of userID as read and
	// returns how many changed.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)

	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) NotificationStore
}
