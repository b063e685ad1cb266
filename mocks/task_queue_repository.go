package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type TaskQueueRepository struct {
	mock.Mock
}

func (m *TaskQueueRepository) EnqueueIntegrityCheckTask(ctx context.Context, limit int, maxAttempts int) error {
	args := m.Called(ctx, limit, maxAttempts)
	return args.Error(0)
}
