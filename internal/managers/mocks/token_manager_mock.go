package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"hoax-server/internal/schemas"
)

type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) CreateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) VerifyToken(ctx context.Context, token string) (*schemas.User, error) {
	args := m.Called(ctx, token)
	if user := args.Get(0); user != nil {
		return user.(*schemas.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenManager) DeleteToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenManager) DeleteTokensForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenManager) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
