package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockImageManager struct {
	mock.Mock
}

func (m *MockImageManager) StoreProfileImage(ctx context.Context, userID uuid.UUID, encoded string) (string, error) {
	args := m.Called(ctx, userID, encoded)
	return args.String(0), args.Error(1)
}

func (m *MockImageManager) DeleteProfileImage(ctx context.Context, filename string) error {
	args := m.Called(ctx, filename)
	return args.Error(0)
}
