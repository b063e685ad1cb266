package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/pure_utils"
)

var auditEntryColumns = []string{
	"sequence_id", "entry_hash", "previous_hash", "event_type", "actor_type",
	"actor_id", "target_type", "target_id", "action", "old_values",
	"new_values", "metadata", "created_at",
}

// txStub lets a pgxmock pool stand in for a transaction.
type txStub struct {
	transactionOrPool
}

func (t txStub) RawTx() pgx.Tx { return nil }

func newMockExecutor(t *testing.T) (pgxmock.PgxPoolIface, Executor) {
	t.Helper()

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	return mockPool, &PgExecutor{exec: mockPool}
}

func TestAcquireLedgerLock(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(int64(874411390217)).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	repo := NewAuditDbRepository()
	err = repo.AcquireLedgerLock(context.Background(), txStub{mockPool})

	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestLatestEntry(t *testing.T) {
	t.Run("empty ledger yields no entry", func(t *testing.T) {
		mockPool, exec := newMockExecutor(t)

		mockPool.ExpectQuery("SELECT .* FROM audit.audit_entries ORDER BY sequence_id DESC LIMIT 1").
			WillReturnRows(pgxmock.NewRows(auditEntryColumns))

		repo := NewAuditDbRepository()
		entry, err := repo.LatestEntry(context.Background(), exec)

		assert.NoError(t, err)
		assert.Nil(t, entry)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("returns the highest sequence entry", func(t *testing.T) {
		mockPool, exec := newMockExecutor(t)

		createdAt := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
		mockPool.ExpectQuery("SELECT .* FROM audit.audit_entries ORDER BY sequence_id DESC LIMIT 1").
			WillReturnRows(pgxmock.NewRows(auditEntryColumns).AddRow(
				int64(7), "feed", models.SentinelHash, "report_resolved", "moderator",
				pure_utils.Ptr("mod_17"), (*string)(nil), (*string)(nil), "resolve_report",
				map[string]any(nil), map[string]any{"status": "resolved"}, map[string]any(nil),
				createdAt,
			))

		repo := NewAuditDbRepository()
		entry, err := repo.LatestEntry(context.Background(), exec)

		assert.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(7), entry.SequenceId)
		assert.Equal(t, models.ActorTypeModerator, entry.ActorType)
		assert.Equal(t, createdAt, entry.Timestamp)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestGetEntryBySequence_not_found(t *testing.T) {
	mockPool, exec := newMockExecutor(t)

	mockPool.ExpectQuery("SELECT .* FROM audit.audit_entries WHERE sequence_id = \\$1").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(auditEntryColumns))

	repo := NewAuditDbRepository()
	_, err := repo.GetEntryBySequence(context.Background(), exec, 99)

	assert.ErrorIs(t, err, models.NotFoundError)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestInsertEntry(t *testing.T) {
	mockPool, exec := newMockExecutor(t)

	entry := models.AuditEntry{
		SequenceId:   1,
		EntryHash:    "abcd",
		PreviousHash: models.SentinelHash,
		EventType:    "report_submitted",
		ActorType:    models.ActorTypeUser,
		Action:       "submit_report",
		Timestamp:    time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
	}

	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO audit.audit_entries")).
		WithArgs(
			entry.SequenceId, entry.EntryHash, entry.PreviousHash, entry.EventType,
			entry.ActorType, entry.ActorId, entry.TargetType, entry.TargetId,
			entry.Action, entry.OldValues, entry.NewValues, entry.Metadata,
			entry.Timestamp,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewAuditDbRepository()
	err := repo.InsertEntry(context.Background(), exec, entry)

	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestLedgerBounds(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		mockPool, exec := newMockExecutor(t)

		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT min(sequence_id), max(sequence_id) FROM audit.audit_entries")).
			WillReturnRows(pgxmock.NewRows([]string{"min", "max"}).AddRow((*int64)(nil), (*int64)(nil)))

		repo := NewAuditDbRepository()
		bounds, err := repo.LedgerBounds(context.Background(), exec)

		assert.NoError(t, err)
		assert.True(t, bounds.Empty)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("populated table", func(t *testing.T) {
		mockPool, exec := newMockExecutor(t)

		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT min(sequence_id), max(sequence_id) FROM audit.audit_entries")).
			WillReturnRows(pgxmock.NewRows([]string{"min", "max"}).
				AddRow(pure_utils.Ptr(int64(1)), pure_utils.Ptr(int64(42))))

		repo := NewAuditDbRepository()
		bounds, err := repo.LedgerBounds(context.Background(), exec)

		assert.NoError(t, err)
		assert.False(t, bounds.Empty)
		assert.Equal(t, int64(1), bounds.MinSequenceId)
		assert.Equal(t, int64(42), bounds.MaxSequenceId)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestListEntryRange(t *testing.T) {
	mockPool, exec := newMockExecutor(t)

	createdAt := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery("SELECT .* FROM audit.audit_entries WHERE sequence_id >= \\$1 AND sequence_id <= \\$2 ORDER BY sequence_id ASC LIMIT 1000").
		WithArgs(int64(3), int64(5)).
		WillReturnRows(pgxmock.NewRows(auditEntryColumns).
			AddRow(int64(3), "h3", "h2", "warning_issued", "moderator",
				(*string)(nil), (*string)(nil), (*string)(nil), "issue_warning",
				map[string]any(nil), map[string]any(nil), map[string]any(nil), createdAt).
			AddRow(int64(4), "h4", "h3", "warning_issued", "moderator",
				(*string)(nil), (*string)(nil), (*string)(nil), "issue_warning",
				map[string]any(nil), map[string]any(nil), map[string]any(nil), createdAt))

	repo := NewAuditDbRepository()
	entries, err := repo.ListEntryRange(context.Background(), exec, 3, 5, 1000)

	assert.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(3), entries[0].SequenceId)
	assert.Equal(t, int64(4), entries[1].SequenceId)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
