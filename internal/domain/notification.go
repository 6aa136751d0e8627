package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification.
type NotificationType string

// NotificationTaskAssigned is sent to a user who was made assignee of a task.
const NotificationTaskAssigned NotificationType = "TASK_ASSIGNED"

var ErrEmptyNotificationUser = invalid("notification user cannot be empty")

// Notification is an in-app message addressed to a single user.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      *string          `json:"link"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewNotification creates an unread notification for userID.
func NewNotification(userID uuid.UUID, typ NotificationType, title, message string, link *string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrInvalidID
	}
	if n.UserID == uuid.Nil {
		return ErrEmptyNotificationUser
	}
	if n.Type == "" || n.Title == "" || n.Message == "" {
		return ErrEmptyContent
	}
	return nil
}
