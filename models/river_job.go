package models

// integrity verification job, run on a cadence and on demand
type IntegrityCheckArgs struct {
	// Limit caps the scan to the most recent N entries; 0 scans the full
	// ledger.
	Limit int `json:"limit"`
}

func (IntegrityCheckArgs) Kind() string { return "integrity_check" }
