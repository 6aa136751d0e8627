package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
)

// NotificationPage is one page of a user's notifications plus the number of
// unread notifications overall.
type NotificationPage struct {
	domain.PageResult[domain.Notification]
	UnreadCount int `json:"unreadCount"`
}

// NotificationService gives users access to their own notifications.
type NotificationService interface {
	List(ctx context.Context, actor domain.Actor, page, pageSize int) (*NotificationPage, error)

	// MarkRead marks one notification read. Users may only touch their own
	// notifications, regardless of role.
	MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error)

	// MarkAllRead returns the number of notifications that changed.
	MarkAllRead(ctx context.Context, actor domain.Actor) (int, error)

	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type notificationService struct {
	base
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(d Deps) NotificationService {
	return &notificationService{base: newBase(d, "notification_service")}
}

func (s *notificationService) List(ctx context.Context, actor domain.Actor, page, pageSize int) (*NotificationPage, error) {
	p := domain.NormalizePage(page, pageSize, defaultNotificationPageSize, maxPageSize)
	items, total, unread, err := s.stores.Notifications.List(ctx, actor.UserID, p)
	if err != nil {
		return nil, s.fail(ctx, "list_notifications", "failed to list notifications", err)
	}
	return &NotificationPage{
		PageResult:  domain.NewPageResult(items, p, total),
		UnreadCount: unread,
	}, nil
}

// own loads a notification and checks that it is addressed to actor.
func (s *notificationService) own(ctx context.Context, tx *sql.Tx, actor domain.Actor, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.stores.Notifications.WithTx(tx).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error) {
	var n *domain.Notification
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		if n, err = s.own(ctx, tx, actor, id); err != nil {
			return err
		}
		if n.IsRead {
			return nil
		}
		if err := s.stores.Notifications.WithTx(tx).MarkRead(ctx, id); err != nil {
			return err
		}
		n.IsRead = true
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "mark_notification_read", "failed to mark notification read", err,
			slog.String("notification_id", id.String()))
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor domain.Actor) (int, error) {
	var n int
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		n, err = s.stores.Notifications.WithTx(tx).MarkAllRead(ctx, actor.UserID)
		return err
	})
	if err != nil {
		return 0, s.fail(ctx, "mark_all_notifications_read", "failed to mark notifications read", err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.own(ctx, tx, actor, id); err != nil {
			return err
		}
		return s.stores.Notifications.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, "delete_notification", "failed to delete notification", err,
			slog.String("notification_id", id.String()))
	}
	return nil
}
