package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/service/auth"
)

// JWTService is a mock of auth.JWTService.
type JWTService struct {
	mock.Mock
}

var _ auth.JWTService = (*JWTService)(nil)

func (m *JWTService) GenerateToken(ctx context.Context, user *domain.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *JWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	args := m.Called(ctx, tokenString)
	if claims, ok := args.Get(0).(*auth.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}
