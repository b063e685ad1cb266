package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// SentinelHash is the previous_hash of the very first entry in the ledger: the
// hex width of a SHA-256 digest, all zeroes. Keeping the column non-null makes
// the hash input total and an absent link impossible to confuse with the
// origin link.
var SentinelHash = strings.Repeat("0", 64)

type ActorType string

const (
	ActorTypeUser      ActorType = "user"
	ActorTypeModerator ActorType = "moderator"
	ActorTypeSystem    ActorType = "system"
	ActorTypeApi       ActorType = "api"
)

func ActorTypeFrom(s string) (ActorType, error) {
	switch t := ActorType(s); t {
	case ActorTypeUser, ActorTypeModerator, ActorTypeSystem, ActorTypeApi:
		return t, nil
	}
	return "", errors.Wrapf(ErrUnknownActorType, "'%s'", s)
}

// Moderation event types recorded by the surrounding application. The set is
// open: collaborators may introduce new event types without a schema change.
const (
	AuditEventReportSubmitted    = "report_submitted"
	AuditEventReportResolved     = "report_resolved"
	AuditEventWarningIssued      = "warning_issued"
	AuditEventRestrictionApplied = "restriction_applied"
	AuditEventAppealReviewed     = "appeal_reviewed"
	AuditEventModeratorAccess    = "moderator_access"
)

// AuditEntry is one immutable record of the moderation audit ledger. Entries
// are never updated or deleted once written; corrections are modeled as new
// entries referencing the original through TargetId.
type AuditEntry struct {
	SequenceId   int64
	EntryHash    string
	PreviousHash string

	EventType  string
	ActorType  ActorType
	ActorId    *string
	TargetType *string
	TargetId   *string
	Action     string

	OldValues map[string]any
	NewValues map[string]any
	Metadata  map[string]any

	// Timestamp is assigned by the ledger at append time, truncated to
	// microsecond precision so that the hashed value and the stored value
	// are the same.
	Timestamp time.Time
}

type CreateAuditEntryAttributes struct {
	EventType  string
	ActorType  ActorType
	ActorId    *string
	TargetType *string
	TargetId   *string
	Action     string
	OldValues  map[string]any
	NewValues  map[string]any
	Metadata   map[string]any
}

// hashTimestampLayout renders exactly six fractional digits so the canonical
// encoding of a timestamp never depends on trailing-zero trimming.
const hashTimestampLayout = "2006-01-02T15:04:05.000000Z"

// hashPayload fixes the canonical field order of the digest input. The entry's
// own hash is excluded; the previous hash is included. Nil fields serialize as
// explicit JSON nulls and map keys are sorted by encoding/json, so the
// encoding is deterministic regardless of in-memory ordering.
type hashPayload struct {
	SequenceId   int64          `json:"sequence_id"`
	PreviousHash string         `json:"previous_hash"`
	EventType    string         `json:"event_type"`
	ActorType    ActorType      `json:"actor_type"`
	ActorId      *string        `json:"actor_id"`
	TargetType   *string        `json:"target_type"`
	TargetId     *string        `json:"target_id"`
	Action       string         `json:"action"`
	OldValues    map[string]any `json:"old_values"`
	NewValues    map[string]any `json:"new_values"`
	Metadata     map[string]any `json:"metadata"`
	Timestamp    string         `json:"timestamp"`
}

// ComputeHash digests the canonical encoding of the entry. The same function
// runs on the write path (ledger append) and on the read path (integrity
// verification); the two must never diverge.
func (e AuditEntry) ComputeHash() (string, error) {
	oldValues, err := NormalizeValues(e.OldValues)
	if err != nil {
		return "", errors.Wrap(err, "cannot canonicalize old_values")
	}
	newValues, err := NormalizeValues(e.NewValues)
	if err != nil {
		return "", errors.Wrap(err, "cannot canonicalize new_values")
	}
	metadata, err := NormalizeValues(e.Metadata)
	if err != nil {
		return "", errors.Wrap(err, "cannot canonicalize metadata")
	}

	payload, err := json.Marshal(hashPayload{
		SequenceId:   e.SequenceId,
		PreviousHash: e.PreviousHash,
		EventType:    e.EventType,
		ActorType:    e.ActorType,
		ActorId:      e.ActorId,
		TargetType:   e.TargetType,
		TargetId:     e.TargetId,
		Action:       e.Action,
		OldValues:    oldValues,
		NewValues:    newValues,
		Metadata:     metadata,
		Timestamp:    e.Timestamp.UTC().Format(hashTimestampLayout),
	})
	if err != nil {
		return "", errors.Wrap(err, "cannot marshal audit entry hash payload")
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// NormalizeValues round-trips a value bag through JSON so that what gets
// hashed at write time is byte-identical to what a JSONB column yields at
// read time (e.g. int becomes float64 both ways). Nil stays nil.
func NormalizeValues(values map[string]any) (map[string]any, error) {
	if values == nil {
		return nil, nil
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	normalized := make(map[string]any, len(values))
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

type AuditEntryFilters struct {
	EventType  string
	ActorType  string
	ActorId    string
	TargetType string
	TargetId   string
	From       *time.Time
	To         *time.Time
	Limit      int
	// AfterSequenceId is an exclusive keyset cursor: entries with a strictly
	// lower sequence id are returned (listing is newest first).
	AfterSequenceId int64
}

// LedgerBounds describes the sequence range currently held by the store.
type LedgerBounds struct {
	Empty         bool
	MinSequenceId int64
	MaxSequenceId int64
}
