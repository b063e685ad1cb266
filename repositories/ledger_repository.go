package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/repositories/dbmodels"
)

// ledgerAdvisoryLockKey serializes "read latest hash, compute next, insert"
// across concurrent appenders. The lock is transaction-scoped: it releases on
// commit or rollback.
const ledgerAdvisoryLockKey = int64(874411390217)

type AuditDbRepository struct{}

func NewAuditDbRepository() *AuditDbRepository {
	return &AuditDbRepository{}
}

func (repo *AuditDbRepository) AcquireLedgerLock(ctx context.Context, tx Transaction) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", ledgerAdvisoryLockKey)
	return errors.Wrap(err, "could not acquire ledger append lock")
}

func (repo *AuditDbRepository) LatestEntry(ctx context.Context, exec Executor) (*models.AuditEntry, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectAuditEntryColumns...).
		From(dbmodels.TABLE_AUDIT_ENTRIES).
		OrderBy("sequence_id DESC").
		Limit(1)

	return SqlToOptionalModel(ctx, exec, query, dbmodels.AdaptAuditEntry)
}

func (repo *AuditDbRepository) InsertEntry(ctx context.Context, exec Executor, entry models.AuditEntry) error {
	query := NewQueryBuilder().
		Insert(dbmodels.TABLE_AUDIT_ENTRIES).
		Columns(
			"sequence_id",
			"entry_hash",
			"previous_hash",
			"event_type",
			"actor_type",
			"actor_id",
			"target_type",
			"target_id",
			"action",
			"old_values",
			"new_values",
			"metadata",
			"created_at",
		).
		Values(
			entry.SequenceId,
			entry.EntryHash,
			entry.PreviousHash,
			entry.EventType,
			entry.ActorType,
			entry.ActorId,
			entry.TargetType,
			entry.TargetId,
			entry.Action,
			entry.OldValues,
			entry.NewValues,
			entry.Metadata,
			entry.Timestamp,
		)

	_, err := ExecBuilder(ctx, exec, query)
	return err
}

func (repo *AuditDbRepository) GetEntryBySequence(ctx context.Context, exec Executor, sequenceId int64) (models.AuditEntry, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectAuditEntryColumns...).
		From(dbmodels.TABLE_AUDIT_ENTRIES).
		Where(squirrel.Eq{"sequence_id": sequenceId})

	return SqlToModel(ctx, exec, query, dbmodels.AdaptAuditEntry)
}

func (repo *AuditDbRepository) GetEntryByHash(ctx context.Context, exec Executor, entryHash string) (models.AuditEntry, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectAuditEntryColumns...).
		From(dbmodels.TABLE_AUDIT_ENTRIES).
		Where(squirrel.Eq{"entry_hash": entryHash})

	return SqlToModel(ctx, exec, query, dbmodels.AdaptAuditEntry)
}

// ListEntryRange returns up to limit entries with fromSequenceId <=
// sequence_id <= toSequenceId, strictly in ascending sequence order. Gaps are
// returned as-is: detecting them is the verifier's job.
func (repo *AuditDbRepository) ListEntryRange(
	ctx context.Context,
	exec Executor,
	fromSequenceId, toSequenceId int64,
	limit int,
) ([]models.AuditEntry, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectAuditEntryColumns...).
		From(dbmodels.TABLE_AUDIT_ENTRIES).
		Where(squirrel.GtOrEq{"sequence_id": fromSequenceId}).
		Where(squirrel.LtOrEq{"sequence_id": toSequenceId}).
		OrderBy("sequence_id ASC").
		Limit(uint64(limit))

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptAuditEntry)
}

// LedgerBounds reports the lowest and highest sequence ids currently stored.
func (repo *AuditDbRepository) LedgerBounds(ctx context.Context, exec Executor) (models.LedgerBounds, error) {
	row := exec.QueryRow(ctx,
		"SELECT min(sequence_id), max(sequence_id) FROM "+dbmodels.TABLE_AUDIT_ENTRIES)

	var minSeq, maxSeq *int64
	if err := row.Scan(&minSeq, &maxSeq); err != nil {
		return models.LedgerBounds{}, errors.Wrap(err, "could not read ledger bounds")
	}
	if minSeq == nil || maxSeq == nil {
		return models.LedgerBounds{Empty: true}, nil
	}
	return models.LedgerBounds{
		MinSequenceId: *minSeq,
		MaxSequenceId: *maxSeq,
	}, nil
}

func (repo *AuditDbRepository) ListEntries(
	ctx context.Context,
	exec Executor,
	filters models.AuditEntryFilters,
) ([]models.AuditEntry, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectAuditEntryColumns...).
		From(dbmodels.TABLE_AUDIT_ENTRIES).
		OrderBy("sequence_id DESC").
		Limit(uint64(filters.Limit))

	if filters.EventType != "" {
		query = query.Where(squirrel.Eq{"event_type": filters.EventType})
	}
	if filters.ActorType != "" {
		query = query.Where(squirrel.Eq{"actor_type": filters.ActorType})
	}
	if filters.ActorId != "" {
		query = query.Where(squirrel.Eq{"actor_id": filters.ActorId})
	}
	if filters.TargetType != "" {
		query = query.Where(squirrel.Eq{"target_type": filters.TargetType})
	}
	if filters.TargetId != "" {
		query = query.Where(squirrel.Eq{"target_id": filters.TargetId})
	}
	if filters.From != nil {
		query = query.Where(squirrel.GtOrEq{"created_at": *filters.From})
	}
	if filters.To != nil {
		query = query.Where(squirrel.LtOrEq{"created_at": *filters.To})
	}
	if filters.AfterSequenceId > 0 {
		query = query.Where(squirrel.Lt{"sequence_id": filters.AfterSequenceId})
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptAuditEntry)
}
