package usecases

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/repositories"
	"github.com/peerhaven/audit-backend/repositories/clock"
	"github.com/peerhaven/audit-backend/usecases/executor_factory"
	"github.com/peerhaven/audit-backend/utils"
)

type LedgerRepository interface {
	AcquireLedgerLock(ctx context.Context, tx repositories.Transaction) error
	LatestEntry(ctx context.Context, exec repositories.Executor) (*models.AuditEntry, error)
	InsertEntry(ctx context.Context, exec repositories.Executor, entry models.AuditEntry) error
	GetEntryBySequence(ctx context.Context, exec repositories.Executor, sequenceId int64) (models.AuditEntry, error)
	GetEntryByHash(ctx context.Context, exec repositories.Executor, entryHash string) (models.AuditEntry, error)
	ListEntries(ctx context.Context, exec repositories.Executor,
		filters models.AuditEntryFilters) ([]models.AuditEntry, error)
}

// LedgerUsecase exclusively owns entry creation and hash assignment. Every
// moderation-relevant action enters the trail through AppendEntry.
type LedgerUsecase struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         LedgerRepository
	clock              clock.Clock
}

// AppendEntry links a new entry to the current ledger head and commits it.
//
// The critical section "read latest hash, compute next, insert" runs inside
// one transaction holding the ledger advisory lock, so two concurrent appends
// can never both read the same head. The unique constraint on sequence_id is
// the structural backstop: if it ever fires the append is reported as a
// retryable conflict and nothing was written.
func (usecase *LedgerUsecase) AppendEntry(
	ctx context.Context,
	attrs models.CreateAuditEntryAttributes,
) (models.AuditEntry, error) {
	if attrs.EventType == "" {
		return models.AuditEntry{}, errors.Wrap(models.BadParameterError, "event_type is required")
	}
	if attrs.Action == "" {
		return models.AuditEntry{}, errors.Wrap(models.BadParameterError, "action is required")
	}
	if _, err := models.ActorTypeFrom(string(attrs.ActorType)); err != nil {
		return models.AuditEntry{}, err
	}

	entry, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory,
		func(tx repositories.Transaction) (models.AuditEntry, error) {
			if err := usecase.repository.AcquireLedgerLock(ctx, tx); err != nil {
				return models.AuditEntry{}, err
			}

			latest, err := usecase.repository.LatestEntry(ctx, tx)
			if err != nil {
				return models.AuditEntry{}, err
			}

			sequenceId := int64(1)
			previousHash := models.SentinelHash
			if latest != nil {
				sequenceId = latest.SequenceId + 1
				previousHash = latest.EntryHash
			}

			entry := models.AuditEntry{
				SequenceId:   sequenceId,
				PreviousHash: previousHash,
				EventType:    attrs.EventType,
				ActorType:    attrs.ActorType,
				ActorId:      attrs.ActorId,
				TargetType:   attrs.TargetType,
				TargetId:     attrs.TargetId,
				Action:       attrs.Action,
				OldValues:    attrs.OldValues,
				NewValues:    attrs.NewValues,
				Metadata:     attrs.Metadata,
				// store microsecond precision: the hashed timestamp must be
				// the stored one, bit for bit
				Timestamp: usecase.clock.Now().UTC().Truncate(time.Microsecond),
			}

			// hash over normalized value bags, so the write path digests the
			// same bytes the verifier will read back from jsonb
			if entry.OldValues, err = models.NormalizeValues(entry.OldValues); err != nil {
				return models.AuditEntry{}, errors.Wrap(models.BadParameterError, err.Error())
			}
			if entry.NewValues, err = models.NormalizeValues(entry.NewValues); err != nil {
				return models.AuditEntry{}, errors.Wrap(models.BadParameterError, err.Error())
			}
			if entry.Metadata, err = models.NormalizeValues(entry.Metadata); err != nil {
				return models.AuditEntry{}, errors.Wrap(models.BadParameterError, err.Error())
			}

			if entry.EntryHash, err = entry.ComputeHash(); err != nil {
				return models.AuditEntry{}, err
			}

			if err := usecase.repository.InsertEntry(ctx, tx, entry); err != nil {
				if repositories.IsUniqueViolationError(err) {
					return models.AuditEntry{}, models.ErrAppendRace
				}
				return models.AuditEntry{}, err
			}
			return entry, nil
		})
	if err != nil {
		return models.AuditEntry{}, err
	}

	utils.LoggerFromContext(ctx).DebugContext(ctx, "audit entry appended",
		"sequence_id", entry.SequenceId,
		"event_type", entry.EventType,
		"action", entry.Action,
	)
	return entry, nil
}

func (usecase *LedgerUsecase) GetEntryBySequence(ctx context.Context, sequenceId int64) (models.AuditEntry, error) {
	return usecase.repository.GetEntryBySequence(ctx, usecase.executorFactory.NewExecutor(), sequenceId)
}

func (usecase *LedgerUsecase) GetEntryByHash(ctx context.Context, entryHash string) (models.AuditEntry, error) {
	return usecase.repository.GetEntryByHash(ctx, usecase.executorFactory.NewExecutor(), entryHash)
}

func (usecase *LedgerUsecase) ListEntries(ctx context.Context, filters models.AuditEntryFilters) ([]models.AuditEntry, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 100
	}
	return usecase.repository.ListEntries(ctx, usecase.executorFactory.NewExecutor(), filters)
}
