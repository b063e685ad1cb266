package dbmodels

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/utils"
)

type DbIntegrityCheck struct {
	Id               uuid.UUID       `db:"id"`
	CheckDate        time.Time       `db:"check_date"`
	TotalChecked     int             `db:"total_checked"`
	ViolationsFound  int             `db:"violations_found"`
	IntegrityScore   float64         `db:"integrity_score"`
	LastVerifiedHash string          `db:"last_verified_hash"`
	Passed           bool            `db:"passed"`
	DurationMs       int64           `db:"duration_ms"`
	Details          json.RawMessage `db:"details"`
}

const (
	TABLE_INTEGRITY_CHECKS     = "audit.integrity_checks"
	TABLE_LAST_INTEGRITY_CHECK = "audit.last_integrity_check"
)

var SelectIntegrityCheckColumns = utils.ColumnList[DbIntegrityCheck]()

func AdaptIntegrityCheck(db DbIntegrityCheck) (models.IntegrityCheck, error) {
	var details []models.IntegrityViolation
	if len(db.Details) > 0 {
		if err := json.Unmarshal(db.Details, &details); err != nil {
			return models.IntegrityCheck{}, errors.Wrap(err, "cannot unmarshal integrity check details")
		}
	}

	return models.IntegrityCheck{
		Id:               db.Id,
		CheckDate:        db.CheckDate,
		TotalChecked:     db.TotalChecked,
		ViolationsFound:  db.ViolationsFound,
		IntegrityScore:   db.IntegrityScore,
		LastVerifiedHash: db.LastVerifiedHash,
		Passed:           db.Passed,
		DurationMs:       db.DurationMs,
		Details:          details,
	}, nil
}
