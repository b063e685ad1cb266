package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/repositories"
	"github.com/peerhaven/audit-backend/repositories/clock"
	"github.com/peerhaven/audit-backend/usecases/executor_factory"
	"github.com/peerhaven/audit-backend/utils"
)

type IntegrityLedgerRepository interface {
	LedgerBounds(ctx context.Context, exec repositories.Executor) (models.LedgerBounds, error)
	ListEntryRange(ctx context.Context, exec repositories.Executor,
		fromSequenceId, toSequenceId int64, limit int) ([]models.AuditEntry, error)
}

type IntegrityCheckRepository interface {
	InsertIntegrityCheck(ctx context.Context, exec repositories.Executor, check models.IntegrityCheck) error
	UpsertLastIntegrityCheck(ctx context.Context, exec repositories.Executor, check models.IntegrityCheck) error
	GetLastIntegrityCheck(ctx context.Context, exec repositories.Executor) (*models.IntegrityCheck, error)
	ListIntegrityChecks(ctx context.Context, exec repositories.Executor,
		filters models.IntegrityCheckFilters) ([]models.IntegrityCheck, error)
}

type IntegrityUsecase struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	ledgerRepository   IntegrityLedgerRepository
	checkRepository    IntegrityCheckRepository
	taskQueue          repositories.TaskQueueRepository
	clock              clock.Clock

	// chunkSize bounds how many entries are held in memory at once while
	// walking the chain.
	chunkSize   int
	maxAttempts int
}

// VerifyChain walks a range of the ledger and re-derives the hash chain. With
// limit > 0 only the most recent limit entries are scanned; otherwise the full
// ledger is. The walk is read-only and deterministic: re-running it on an
// unmodified range yields the same report, modulo CheckedAt and DurationMs.
func (usecase *IntegrityUsecase) VerifyChain(ctx context.Context, limit int) (models.VerificationReport, error) {
	start := usecase.clock.Now()
	exec := usecase.executorFactory.NewExecutor()

	bounds, err := usecase.ledgerRepository.LedgerBounds(ctx, exec)
	if err != nil {
		return models.VerificationReport{}, err
	}

	// verifying nothing is vacuously successful, not an error
	if bounds.Empty || limit < 0 {
		verifier := models.NewChainVerifier(true)
		return verifier.Report(start.UTC(), usecase.clock.Now().Sub(start)), nil
	}

	fromSequenceId := bounds.MinSequenceId
	if limit > 0 && bounds.MaxSequenceId-int64(limit)+1 > fromSequenceId {
		fromSequenceId = bounds.MaxSequenceId - int64(limit) + 1
	}

	// the sentinel check on the first entry only applies when the scan covers
	// the true start of the ledger
	verifier := models.NewChainVerifier(fromSequenceId == bounds.MinSequenceId)

	cursor := fromSequenceId
	for cursor <= bounds.MaxSequenceId {
		entries, err := usecase.ledgerRepository.ListEntryRange(
			ctx, exec, cursor, bounds.MaxSequenceId, usecase.chunkSize)
		if err != nil {
			return models.VerificationReport{}, err
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			if err := verifier.Check(entry); err != nil {
				return models.VerificationReport{}, err
			}
		}
		cursor = entries[len(entries)-1].SequenceId + 1
	}

	return verifier.Report(start.UTC(), usecase.clock.Now().Sub(start)), nil
}

// VerifyAndStoreReport runs VerifyChain, then appends the outcome to the
// check history and overwrites the "last check" cache.
func (usecase *IntegrityUsecase) VerifyAndStoreReport(ctx context.Context, limit int) (models.VerificationReport, error) {
	report, err := usecase.VerifyChain(ctx, limit)
	if err != nil {
		return models.VerificationReport{}, err
	}

	check := models.NewIntegrityCheckFromReport(report)
	err = usecase.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		if err := usecase.checkRepository.InsertIntegrityCheck(ctx, tx, check); err != nil {
			return err
		}
		return usecase.checkRepository.UpsertLastIntegrityCheck(ctx, tx, check)
	})
	if err != nil {
		return models.VerificationReport{}, errors.Wrap(err, "could not store verification report")
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "audit chain verification completed",
		"total_checked", report.TotalChecked,
		"violations_found", report.ViolationsFound,
		"integrity_score", report.IntegrityScore,
		"passed", report.Passed,
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

func (usecase *IntegrityUsecase) GetLastCheck(ctx context.Context) (*models.IntegrityCheck, error) {
	return usecase.checkRepository.GetLastIntegrityCheck(ctx, usecase.executorFactory.NewExecutor())
}

func (usecase *IntegrityUsecase) ListChecks(ctx context.Context, filters models.IntegrityCheckFilters) ([]models.IntegrityCheck, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 25
	}
	return usecase.checkRepository.ListIntegrityChecks(ctx, usecase.executorFactory.NewExecutor(), filters)
}

// TriggerCheck enqueues an on-demand verification run on the task queue.
func (usecase *IntegrityUsecase) TriggerCheck(ctx context.Context, limit int) error {
	if limit < 0 {
		return errors.Wrap(models.BadParameterError, "limit must be positive")
	}
	if usecase.taskQueue == nil {
		return errors.New("task queue is not configured")
	}
	return usecase.taskQueue.EnqueueIntegrityCheckTask(ctx, limit, usecase.maxAttempts)
}
