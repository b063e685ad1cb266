package dto

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/peerhaven/audit-backend/models"
)

type CreateAuditEntryBody struct {
	EventType  string         `json:"event_type" binding:"required"`
	ActorType  string         `json:"actor_type" binding:"required,oneof=user moderator system api"`
	ActorId    null.String    `json:"actor_id"`
	TargetType null.String    `json:"target_type"`
	TargetId   null.String    `json:"target_id"`
	Action     string         `json:"action" binding:"required"`
	OldValues  map[string]any `json:"old_values"`
	NewValues  map[string]any `json:"new_values"`
	Metadata   map[string]any `json:"metadata"`
}

func AdaptCreateAuditEntryAttributes(body CreateAuditEntryBody) models.CreateAuditEntryAttributes {
	return models.CreateAuditEntryAttributes{
		EventType:  body.EventType,
		ActorType:  models.ActorType(body.ActorType),
		ActorId:    body.ActorId.Ptr(),
		TargetType: body.TargetType.Ptr(),
		TargetId:   body.TargetId.Ptr(),
		Action:     body.Action,
		OldValues:  body.OldValues,
		NewValues:  body.NewValues,
		Metadata:   body.Metadata,
	}
}

type AuditEntryFilters struct {
	EventType  string     `form:"event_type"`
	ActorType  string     `form:"actor_type" binding:"omitempty,oneof=user moderator system api"`
	ActorId    string     `form:"actor_id"`
	TargetType string     `form:"target_type"`
	TargetId   string     `form:"target_id"`
	From       *time.Time `form:"from"`
	To         *time.Time `form:"to"`
	Limit      int        `form:"limit" binding:"omitempty,gte=1,lte=100"`
	After      int64      `form:"after" binding:"omitempty,gte=1"`
}

func AdaptAuditEntryFilters(filters AuditEntryFilters) models.AuditEntryFilters {
	return models.AuditEntryFilters{
		EventType:       filters.EventType,
		ActorType:       filters.ActorType,
		ActorId:         filters.ActorId,
		TargetType:      filters.TargetType,
		TargetId:        filters.TargetId,
		From:            filters.From,
		To:              filters.To,
		Limit:           filters.Limit,
		AfterSequenceId: filters.After,
	}
}

type AuditEntry struct {
	SequenceId   int64  `json:"sequence_id"`
	EntryHash    string `json:"entry_hash"`
	PreviousHash string `json:"previous_hash"`

	EventType  string      `json:"event_type"`
	ActorType  string      `json:"actor_type"`
	ActorId    null.String `json:"actor_id"`
	TargetType null.String `json:"target_type"`
	TargetId   null.String `json:"target_id"`
	Action     string      `json:"action"`

	OldValues map[string]any `json:"old_values"`
	NewValues map[string]any `json:"new_values"`
	Metadata  map[string]any `json:"metadata"`

	Timestamp time.Time `json:"timestamp"`
}

func AdaptAuditEntry(m models.AuditEntry) AuditEntry {
	return AuditEntry{
		SequenceId:   m.SequenceId,
		EntryHash:    m.EntryHash,
		PreviousHash: m.PreviousHash,
		EventType:    m.EventType,
		ActorType:    string(m.ActorType),
		ActorId:      null.StringFromPtr(m.ActorId),
		TargetType:   null.StringFromPtr(m.TargetType),
		TargetId:     null.StringFromPtr(m.TargetId),
		Action:       m.Action,
		OldValues:    m.OldValues,
		NewValues:    m.NewValues,
		Metadata:     m.Metadata,
		Timestamp:    m.Timestamp,
	}
}
