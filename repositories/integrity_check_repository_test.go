package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerhaven/audit-backend/models"
)

var integrityCheckTestColumns = []string{
	"id", "check_date", "total_checked", "violations_found", "integrity_score",
	"last_verified_hash", "passed", "duration_ms", "details",
}

func TestUpsertLastIntegrityCheck(t *testing.T) {
	mockPool, exec := newMockExecutor(t)

	check := models.IntegrityCheck{
		Id:               uuid.New(),
		CheckDate:        time.Date(2026, 8, 10, 15, 0, 0, 0, time.UTC),
		TotalChecked:     42,
		ViolationsFound:  1,
		IntegrityScore:   0.976,
		LastVerifiedHash: "abcd",
		Passed:           false,
		DurationMs:       120,
		Details: []models.IntegrityViolation{
			{SequenceId: 7, Kind: models.ViolationChainBreak},
		},
	}

	mockPool.ExpectExec("INSERT INTO audit.last_integrity_check .* ON CONFLICT \\(singleton\\) DO UPDATE SET").
		WithArgs(
			check.Id, check.CheckDate, check.TotalChecked, check.ViolationsFound,
			check.IntegrityScore, check.LastVerifiedHash, check.Passed, check.DurationMs,
			[]byte(`[{"sequence_id":7,"kind":"chain_break"}]`),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewAuditDbRepository()
	err := repo.UpsertLastIntegrityCheck(context.Background(), exec, check)

	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetLastIntegrityCheck(t *testing.T) {
	t.Run("never verified", func(t *testing.T) {
		mockPool, exec := newMockExecutor(t)

		mockPool.ExpectQuery("SELECT .* FROM audit.last_integrity_check").
			WillReturnRows(pgxmock.NewRows(integrityCheckTestColumns))

		repo := NewAuditDbRepository()
		check, err := repo.GetLastIntegrityCheck(context.Background(), exec)

		assert.NoError(t, err)
		assert.Nil(t, check)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("returns the cached row with its details", func(t *testing.T) {
		mockPool, exec := newMockExecutor(t)

		id := uuid.New()
		checkDate := time.Date(2026, 8, 10, 15, 0, 0, 0, time.UTC)
		mockPool.ExpectQuery("SELECT .* FROM audit.last_integrity_check").
			WillReturnRows(pgxmock.NewRows(integrityCheckTestColumns).AddRow(
				id, checkDate, 42, 1, 0.976, "abcd", false, int64(120),
				[]byte(`[{"sequence_id":7,"kind":"chain_break"}]`),
			))

		repo := NewAuditDbRepository()
		check, err := repo.GetLastIntegrityCheck(context.Background(), exec)

		assert.NoError(t, err)
		require.NotNil(t, check)
		assert.Equal(t, id, check.Id)
		assert.Equal(t, []models.IntegrityViolation{
			{SequenceId: 7, Kind: models.ViolationChainBreak},
		}, check.Details)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
