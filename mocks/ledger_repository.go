package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/repositories"
)

type LedgerRepository struct {
	mock.Mock
}

func (m *LedgerRepository) AcquireLedgerLock(ctx context.Context, tx repositories.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *LedgerRepository) LatestEntry(ctx context.Context, exec repositories.Executor) (*models.AuditEntry, error) {
	args := m.Called(ctx, exec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditEntry), args.Error(1)
}

func (m *LedgerRepository) InsertEntry(ctx context.Context, exec repositories.Executor, entry models.AuditEntry) error {
	args := m.Called(ctx, exec, entry)
	return args.Error(0)
}

func (m *LedgerRepository) GetEntryBySequence(ctx context.Context, exec repositories.Executor,
	sequenceId int64,
) (models.AuditEntry, error) {
	args := m.Called(ctx, exec, sequenceId)
	return args.Get(0).(models.AuditEntry), args.Error(1)
}

func (m *LedgerRepository) GetEntryByHash(ctx context.Context, exec repositories.Executor,
	entryHash string,
) (models.AuditEntry, error) {
	args := m.Called(ctx, exec, entryHash)
	return args.Get(0).(models.AuditEntry), args.Error(1)
}

func (m *LedgerRepository) ListEntries(ctx context.Context, exec repositories.Executor,
	filters models.AuditEntryFilters,
) ([]models.AuditEntry, error) {
	args := m.Called(ctx, exec, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEntry), args.Error(1)
}

func (m *LedgerRepository) LedgerBounds(ctx context.Context, exec repositories.Executor) (models.LedgerBounds, error) {
	args := m.Called(ctx, exec)
	return args.Get(0).(models.LedgerBounds), args.Error(1)
}

func (m *LedgerRepository) ListEntryRange(ctx context.Context, exec repositories.Executor,
	fromSequenceId, toSequenceId int64, limit int,
) ([]models.AuditEntry, error) {
	args := m.Called(ctx, exec, fromSequenceId, toSequenceId, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEntry), args.Error(1)
}
