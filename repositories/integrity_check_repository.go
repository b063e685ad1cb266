package repositories

import (
	"context"
	"encoding/json"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/repositories/dbmodels"
)

func (repo *AuditDbRepository) InsertIntegrityCheck(ctx context.Context, exec Executor, check models.IntegrityCheck) error {
	details, err := marshalCheckDetails(check)
	if err != nil {
		return err
	}

	query := NewQueryBuilder().
		Insert(dbmodels.TABLE_INTEGRITY_CHECKS).
		Columns(integrityCheckColumns()...).
		Values(integrityCheckValues(check, details)...)

	_, err = ExecBuilder(ctx, exec, query)
	return err
}

// UpsertLastIntegrityCheck overwrites the single-row "last check" cache.
// Last-write-wins is fine: reports are informational and only ever replaced
// wholesale.
func (repo *AuditDbRepository) UpsertLastIntegrityCheck(ctx context.Context, exec Executor, check models.IntegrityCheck) error {
	details, err := marshalCheckDetails(check)
	if err != nil {
		return err
	}

	query := NewQueryBuilder().
		Insert(dbmodels.TABLE_LAST_INTEGRITY_CHECK).
		Columns(integrityCheckColumns()...).
		Values(integrityCheckValues(check, details)...).
		Suffix(`ON CONFLICT (singleton) DO UPDATE SET
			id = EXCLUDED.id,
			check_date = EXCLUDED.check_date,
			total_checked = EXCLUDED.total_checked,
			violations_found = EXCLUDED.violations_found,
			integrity_score = EXCLUDED.integrity_score,
			last_verified_hash = EXCLUDED.last_verified_hash,
			passed = EXCLUDED.passed,
			duration_ms = EXCLUDED.duration_ms,
			details = EXCLUDED.details`)

	_, err = ExecBuilder(ctx, exec, query)
	return err
}

func (repo *AuditDbRepository) GetLastIntegrityCheck(ctx context.Context, exec Executor) (*models.IntegrityCheck, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectIntegrityCheckColumns...).
		From(dbmodels.TABLE_LAST_INTEGRITY_CHECK)

	return SqlToOptionalModel(ctx, exec, query, dbmodels.AdaptIntegrityCheck)
}

func (repo *AuditDbRepository) GetIntegrityCheck(ctx context.Context, exec Executor, id string) (models.IntegrityCheck, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectIntegrityCheckColumns...).
		From(dbmodels.TABLE_INTEGRITY_CHECKS).
		Where(squirrel.Eq{"id": id})

	return SqlToModel(ctx, exec, query, dbmodels.AdaptIntegrityCheck)
}

func (repo *AuditDbRepository) ListIntegrityChecks(
	ctx context.Context,
	exec Executor,
	filters models.IntegrityCheckFilters,
) ([]models.IntegrityCheck, error) {
	query := NewQueryBuilder().
		Select(dbmodels.SelectIntegrityCheckColumns...).
		From(dbmodels.TABLE_INTEGRITY_CHECKS).
		OrderBy("check_date DESC, id DESC").
		Limit(uint64(filters.Limit))

	if filters.AfterId != uuid.Nil {
		cursor, err := repo.GetIntegrityCheck(ctx, exec, filters.AfterId.String())
		if err != nil {
			return nil, errors.Wrap(err, "could not retrieve cursor check")
		}
		query = query.Where("(check_date, id) < (?, ?)", cursor.CheckDate, cursor.Id)
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptIntegrityCheck)
}

func integrityCheckColumns() []string {
	return []string{
		"id",
		"check_date",
		"total_checked",
		"violations_found",
		"integrity_score",
		"last_verified_hash",
		"passed",
		"duration_ms",
		"details",
	}
}

func integrityCheckValues(check models.IntegrityCheck, details []byte) []any {
	return []any{
		check.Id,
		check.CheckDate,
		check.TotalChecked,
		check.ViolationsFound,
		check.IntegrityScore,
		check.LastVerifiedHash,
		check.Passed,
		check.DurationMs,
		details,
	}
}

func marshalCheckDetails(check models.IntegrityCheck) ([]byte, error) {
	if len(check.Details) == 0 {
		return nil, nil
	}
	details, err := json.Marshal(check.Details)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal integrity check details")
	}
	return details, nil
}
