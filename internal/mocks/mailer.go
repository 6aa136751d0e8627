package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/taskify/taskify-api/internal/platform/mailer"
)

// Mailer is a mock of mailer.Mailer.
type Mailer struct {
	mock.Mock
}

var _ mailer.Mailer = (*Mailer)(nil)

func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
