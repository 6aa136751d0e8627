package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/store"
)

// NotificationStore is a mock of store.NotificationStore.
type NotificationStore struct {
	mock.Mock
}

var _ store.NotificationStore = (*NotificationStore)(nil)

func (m *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if n, ok := args.Get(0).(*domain.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NotificationStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page domain.Page,
) ([]domain.Notification, int, int, error) {
	args := m.Called(ctx, userID, page)
	list, _ := args.Get(0).([]domain.Notification)
	return list, args.Int(1), args.Int(2), args.Error(3)
}

func (m *NotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *NotificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// WithTx returns the mock itself; transactions are not simulated.
func (m *NotificationStore) WithTx(*sql.Tx) store.NotificationStore {
	return m
}
