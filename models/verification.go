package models

import (
	"time"

	"github.com/google/uuid"
)

type ViolationKind string

const (
	// ViolationContentTampered: the stored entry hash does not match the hash
	// recomputed from the entry's content.
	ViolationContentTampered ViolationKind = "content_tampered"
	// ViolationSequenceGap: a sequence id is missing between two scanned
	// entries, i.e. an entry was deleted.
	ViolationSequenceGap ViolationKind = "sequence_gap"
	// ViolationChainBreak: an entry's previous_hash does not match the hash of
	// its predecessor, i.e. an entry was inserted or replaced.
	ViolationChainBreak ViolationKind = "chain_break"
	// ViolationOriginCorrupted: the first entry of the ledger does not carry
	// the sentinel previous hash.
	ViolationOriginCorrupted ViolationKind = "origin_corrupted"
)

type IntegrityViolation struct {
	SequenceId int64         `json:"sequence_id"`
	Kind       ViolationKind `json:"kind"`
}

// VerificationReport is the outcome of one verification pass. It is built
// fresh per run and never mutated afterwards. A report with Passed == false is
// a successful verification whose payload says the ledger is broken.
type VerificationReport struct {
	TotalChecked     int
	ViolationsFound  int
	IntegrityScore   float64
	LastVerifiedHash string
	Violations       []IntegrityViolation
	Passed           bool
	CheckedAt        time.Time
	DurationMs       int64
}

// IntegrityCheck is the persisted trace of a verification run: one row
// appended to the history table per run, plus a single-row "last check" cache
// overwritten each run.
type IntegrityCheck struct {
	Id               uuid.UUID
	CheckDate        time.Time
	TotalChecked     int
	ViolationsFound  int
	IntegrityScore   float64
	LastVerifiedHash string
	Passed           bool
	DurationMs       int64
	Details          []IntegrityViolation
}

func NewIntegrityCheckFromReport(report VerificationReport) IntegrityCheck {
	return IntegrityCheck{
		Id:               uuid.New(),
		CheckDate:        report.CheckedAt,
		TotalChecked:     report.TotalChecked,
		ViolationsFound:  report.ViolationsFound,
		IntegrityScore:   report.IntegrityScore,
		LastVerifiedHash: report.LastVerifiedHash,
		Passed:           report.Passed,
		DurationMs:       report.DurationMs,
		Details:          report.Violations,
	}
}

type IntegrityCheckFilters struct {
	Limit int
	// AfterId pages through history, newest first, using (check_date, id) as
	// the keyset cursor.
	AfterId uuid.UUID
}
