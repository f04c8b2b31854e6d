package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docverify/internal/queue"
)

type MockConsumer struct {
	mock.Mock
}

func (m *MockConsumer) Fetch(ctx context.Context) (queue.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).(queue.Message), args.Error(1)
}

func (m *MockConsumer) Commit(ctx context.Context, msg queue.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockConsumer) Close() {
	m.Called()
}
