package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/store"
)

// NotificationStore implements store.NotificationStore.
type NotificationStore struct {
	db store.DBTX
}

func NewNotificationStore(db store.DBTX) *NotificationStore {
	return &NotificationStore{db: db}
}

var _ store.NotificationStore = (*NotificationStore)(nil)

func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, nullString(n.Link), n.IsRead, n.CreatedAt)
	if err != nil {
		return store.NewStoreError("notification", "create", "failed to insert notification", MapError(err))
	}
	return nil
}

const notificationSelect = `
	SELECT id, user_id, type, title, message, link, is_read, created_at
	FROM notifications`

func (s *NotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx, notificationSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrNotificationNotFound)
	}
	return n, nil
}

func (s *NotificationStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page domain.Page,
) ([]domain.Notification, int, int, error) {
	var total, unread int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_read THEN 0 ELSE 1 END), 0)
		FROM notifications WHERE user_id = $1`, userID).Scan(&total, &unread)
	if err != nil {
		return nil, 0, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, notificationSelect+`
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, userID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, MapError(err)
	}
	return items, total, unread, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = $1 WHERE id = $2`, true, id)
	if err != nil {
		return store.NewStoreError("notification", "update", "failed to mark read", MapError(err))
	}
	return checkRowsAffected(result, store.ErrNotificationNotFound)
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = $1 WHERE user_id = $2 AND is_read = $3`, true, userID, false)
	if err != nil {
		return 0, store.NewStoreError("notification", "update", "failed to mark all read", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

func (s *NotificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("notification", "delete", "failed to delete notification", MapError(err))
	}
	return checkRowsAffected(result, store.ErrNotificationNotFound)
}

func (s *NotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &NotificationStore{db: tx}
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n    domain.Notification
		typ  string
		link sql.NullString
	)
	if err := row.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &link, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(typ)
	n.Link = stringPtr(link)
	return &n, nil
}
