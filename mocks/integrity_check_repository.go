package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/repositories"
)

type IntegrityCheckRepository struct {
	mock.Mock
}

func (m *IntegrityCheckRepository) InsertIntegrityCheck(ctx context.Context, exec repositories.Executor,
	check models.IntegrityCheck,
) error {
	args := m.Called(ctx, exec, check)
	return args.Error(0)
}

func (m *IntegrityCheckRepository) UpsertLastIntegrityCheck(ctx context.Context, exec repositories.Executor,
	check models.IntegrityCheck,
) error {
	args := m.Called(ctx, exec, check)
	return args.Error(0)
}

func (m *IntegrityCheckRepository) GetLastIntegrityCheck(ctx context.Context, exec repositories.Executor) (*models.IntegrityCheck, error) {
	args := m.Called(ctx, exec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntegrityCheck), args.Error(1)
}

func (m *IntegrityCheckRepository) ListIntegrityChecks(ctx context.Context, exec repositories.Executor,
	filters models.IntegrityCheckFilters,
) ([]models.IntegrityCheck, error) {
	args := m.Called(ctx, exec, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IntegrityCheck), args.Error(1)
}
