package models

import "time"

// IntegrityAlert fires when a verification run found violations: the run
// itself succeeded, the ledger is what is broken.
type IntegrityAlert struct {
	TotalChecked     int
	ViolationsFound  int
	IntegrityScore   float64
	LastVerifiedHash string
	CheckedAt        time.Time
}

// JobFailureAlert fires when the verification job exhausted its attempt
// budget on operational errors: verification itself could not run, which says
// nothing about whether the ledger is intact.
type JobFailureAlert struct {
	ErrorMessage string
	Attempts     int
	MaxAttempts  int
	QueueName    string
}
