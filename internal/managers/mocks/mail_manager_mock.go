package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendActivationMail(email, username, token string) error {
	args := m.Called(email, username, token)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordResetMail(email, username, token string) error {
	args := m.Called(email, username, token)
	return args.Error(0)
}
