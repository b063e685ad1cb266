package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/peerhaven/audit-backend/models"
)

type AlertRepository struct {
	mock.Mock
}

func (m *AlertRepository) SendIntegrityAlert(ctx context.Context, alert models.IntegrityAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *AlertRepository) SendJobFailureAlert(ctx context.Context, alert models.JobFailureAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
