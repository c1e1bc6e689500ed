package slack

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a testify mock implementing Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CheckConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClient) TeamInfo(ctx context.Context) (Team, error) {
	args := m.Called(ctx)
	return args.Get(0).(Team), args.Error(1)
}

func (m *MockClient) UserCounts(ctx context.Context) (Counts, error) {
	args := m.Called(ctx)
	return args.Get(0).(Counts), args.Error(1)
}

func (m *MockClient) Invite(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockClient) InvalidateCache() {
	m.Called()
}

func (m *MockClient) Shutdown() {
	m.Called()
}
