package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/pure_utils"
)

type IntegrityViolation struct {
	SequenceId int64  `json:"sequence_id"`
	Kind       string `json:"kind"`
}

func AdaptIntegrityViolation(m models.IntegrityViolation) IntegrityViolation {
	return IntegrityViolation{
		SequenceId: m.SequenceId,
		Kind:       string(m.Kind),
	}
}

type IntegrityCheck struct {
	Id               uuid.UUID            `json:"id"`
	CheckDate        time.Time            `json:"check_date"`
	TotalChecked     int                  `json:"total_checked"`
	ViolationsFound  int                  `json:"violations_found"`
	IntegrityScore   float64              `json:"integrity_score"`
	LastVerifiedHash string               `json:"last_verified_hash"`
	Passed           bool                 `json:"passed"`
	DurationMs       int64                `json:"duration_ms"`
	Details          []IntegrityViolation `json:"details"`
}

func AdaptIntegrityCheck(m models.IntegrityCheck) IntegrityCheck {
	return IntegrityCheck{
		Id:               m.Id,
		CheckDate:        m.CheckDate,
		TotalChecked:     m.TotalChecked,
		ViolationsFound:  m.ViolationsFound,
		IntegrityScore:   m.IntegrityScore,
		LastVerifiedHash: m.LastVerifiedHash,
		Passed:           m.Passed,
		DurationMs:       m.DurationMs,
		Details:          pure_utils.Map(m.Details, AdaptIntegrityViolation),
	}
}

type IntegrityCheckFilters struct {
	Limit   int       `form:"limit" binding:"omitempty,gte=1,lte=100"`
	AfterId uuid.UUID `form:"after_id"`
}

type TriggerIntegrityCheckBody struct {
	// Limit caps the run to the most recent N entries; omitted or zero scans
	// the full ledger.
	Limit int `json:"limit" binding:"omitempty,gte=1"`
}
