package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/peerhaven/audit-backend/pure_utils"
)

func validEntry() AuditEntry {
	return AuditEntry{
		SequenceId:   1,
		PreviousHash: SentinelHash,
		EventType:    AuditEventReportSubmitted,
		ActorType:    ActorTypeUser,
		ActorId:      pure_utils.Ptr("user_42"),
		TargetType:   pure_utils.Ptr("report"),
		TargetId:     pure_utils.Ptr("report_7"),
		Action:       "submit_report",
		NewValues:    map[string]any{"status": "open", "priority": float64(2)},
		Metadata:     map[string]any{"ip": "203.0.113.9"},
		Timestamp:    time.Date(2026, 8, 10, 12, 30, 45, 123456000, time.UTC),
	}
}

func TestComputeHash(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		entry := validEntry()

		first, err := entry.ComputeHash()
		assert.NoError(t, err)
		second, err := entry.ComputeHash()
		assert.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, first, 64)
	})

	t.Run("covers every content field", func(t *testing.T) {
		base := validEntry()
		baseHash, err := base.ComputeHash()
		assert.NoError(t, err)

		changed := []AuditEntry{base, base, base, base, base, base}
		changed[0].SequenceId = 2
		changed[1].PreviousHash = "a" + SentinelHash[1:]
		changed[2].Action = "close_report"
		changed[3].ActorId = nil
		changed[4].NewValues = map[string]any{"status": "closed"}
		changed[5].Timestamp = base.Timestamp.Add(time.Microsecond)

		for _, entry := range changed {
			hash, err := entry.ComputeHash()
			assert.NoError(t, err)
			assert.NotEqual(t, baseHash, hash)
		}
	})

	t.Run("does not cover the entry hash itself", func(t *testing.T) {
		entry := validEntry()
		baseHash, err := entry.ComputeHash()
		assert.NoError(t, err)

		entry.EntryHash = "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
		hash, err := entry.ComputeHash()
		assert.NoError(t, err)
		assert.Equal(t, baseHash, hash)
	})

	t.Run("distinguishes nil from empty value bags", func(t *testing.T) {
		withNil := validEntry()
		withNil.OldValues = nil
		withEmpty := validEntry()
		withEmpty.OldValues = map[string]any{}

		nilHash, err := withNil.ComputeHash()
		assert.NoError(t, err)
		emptyHash, err := withEmpty.ComputeHash()
		assert.NoError(t, err)
		assert.NotEqual(t, nilHash, emptyHash)
	})

	t.Run("matches after a jsonb round trip of the value bags", func(t *testing.T) {
		// at write time the bag holds Go ints, at read time jsonb yields
		// float64: both must digest identically
		written := validEntry()
		written.NewValues = map[string]any{"count": 3}
		readBack := validEntry()
		readBack.NewValues = map[string]any{"count": float64(3)}

		writtenHash, err := written.ComputeHash()
		assert.NoError(t, err)
		readHash, err := readBack.ComputeHash()
		assert.NoError(t, err)
		assert.Equal(t, writtenHash, readHash)
	})
}

func TestNormalizeValues(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		normalized, err := NormalizeValues(nil)
		assert.NoError(t, err)
		assert.Nil(t, normalized)
	})

	t.Run("coerces numbers the way jsonb does", func(t *testing.T) {
		normalized, err := NormalizeValues(map[string]any{"count": 3, "nested": map[string]any{"n": 1}})
		assert.NoError(t, err)
		assert.Equal(t, float64(3), normalized["count"])
		assert.Equal(t, map[string]any{"n": float64(1)}, normalized["nested"])
	})
}

func TestActorTypeFrom(t *testing.T) {
	for _, valid := range []string{"user", "moderator", "system", "api"} {
		actorType, err := ActorTypeFrom(valid)
		assert.NoError(t, err)
		assert.Equal(t, ActorType(valid), actorType)
	}

	_, err := ActorTypeFrom("admin")
	assert.ErrorIs(t, err, ErrUnknownActorType)
}
