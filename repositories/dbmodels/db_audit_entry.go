package dbmodels

import (
	"time"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/utils"
)

type DbAuditEntry struct {
	SequenceId   int64  `db:"sequence_id"`
	EntryHash    string `db:"entry_hash"`
	PreviousHash string `db:"previous_hash"`

	EventType  string  `db:"event_type"`
	ActorType  string  `db:"actor_type"`
	ActorId    *string `db:"actor_id"`
	TargetType *string `db:"target_type"`
	TargetId   *string `db:"target_id"`
	Action     string  `db:"action"`

	OldValues map[string]any `db:"old_values"`
	NewValues map[string]any `db:"new_values"`
	Metadata  map[string]any `db:"metadata"`

	CreatedAt time.Time `db:"created_at"`
}

const TABLE_AUDIT_ENTRIES = "audit.audit_entries"

var SelectAuditEntryColumns = utils.ColumnList[DbAuditEntry]()

func AdaptAuditEntry(db DbAuditEntry) (models.AuditEntry, error) {
	return models.AuditEntry{
		SequenceId:   db.SequenceId,
		EntryHash:    db.EntryHash,
		PreviousHash: db.PreviousHash,
		EventType:    db.EventType,
		ActorType:    models.ActorType(db.ActorType),
		ActorId:      db.ActorId,
		TargetType:   db.TargetType,
		TargetId:     db.TargetId,
		Action:       db.Action,
		OldValues:    db.OldValues,
		NewValues:    db.NewValues,
		Metadata:     db.Metadata,
		Timestamp:    db.CreatedAt,
	}, nil
}
