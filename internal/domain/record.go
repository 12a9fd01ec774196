package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordKind identifies the payload type carried by a syncable record.
type RecordKind string

// Payload kinds the engine persists.
const (
	RecordKindProfile RecordKind = "profile"
	RecordKindGoalSet RecordKind = "goal_set"
)

// IsValid reports whether the record kind is recognized.
func (k RecordKind) IsValid() bool {
	switch k {
	case RecordKindProfile, RecordKindGoalSet:
		return true
	}
	return false
}

// Record wraps a payload (a UserProfile or a GoalSet, serialized as JSON)
// with the sync bookkeeping the offline engine needs.
//
// Invariant: Dirty is true whenever UpdatedAt is after LastSyncedAt, or
// LastSyncedAt is nil. Every local write sets Dirty and advances UpdatedAt;
// only a successful remote push for the current payload version clears
// Dirty and sets LastSyncedAt. The engine never deletes records - deletion
// is an account-management concern outside this system.
type Record struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Kind         RecordKind      `json:"kind"`
	Payload      json.RawMessage `json:"payload"`
	Dirty        bool            `json:"dirty"`
	UpdatedAt    time.Time       `json:"updated_at"`
	LastSyncedAt *time.Time      `json:"last_synced_at,omitempty"`
}

// NewRecord creates a dirty record for a payload's first local write.
// The payload is serialized to JSON; the record ID is deterministic per
// (user, kind) so repeated saves of the same entity address the same row.
func NewRecord(userID uuid.UUID, kind RecordKind, payload any, now time.Time) (*Record, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecordKind, kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	return &Record{
		ID:        RecordID(userID, kind),
		UserID:    userID,
		Kind:      kind,
		Payload:   raw,
		Dirty:     true,
		UpdatedAt: now,
	}, nil
}

// RecordID derives the stable record identifier for a (user, kind) pair.
// Each user owns at most one record per kind; local edits overwrite it
// (last-write-wins) rather than accumulating versions.
func RecordID(userID uuid.UUID, kind RecordKind) uuid.UUID {
	return uuid.NewSHA1(userID, []byte(kind))
}

// Touch applies a new payload version to the record: it replaces the
// payload, marks the record dirty and advances the updated timestamp.
func (r *Record) Touch(payload json.RawMessage, now time.Time) {
	r.Payload = payload
	r.Dirty = true
	r.UpdatedAt = now
}

// MarkSynced records a successful remote push: the record is clean and the
// last-synced timestamp is set.
func (r *Record) MarkSynced(now time.Time) {
	r.Dirty = false
	syncedAt := now
	r.LastSyncedAt = &syncedAt
}

// Validate checks the record's structural and dirty-flag invariants.
func (r *Record) Validate() error {
	if r.ID == uuid.Nil || r.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecordKind, r.Kind)
	}
	if len(r.Payload) == 0 {
		return ErrEmptyPayload
	}
	if r.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: missing updated timestamp", ErrValidation)
	}
	// Dirty must be set whenever the payload postdates the last sync.
	if !r.Dirty && (r.LastSyncedAt == nil || r.UpdatedAt.After(*r.LastSyncedAt)) {
		return fmt.Errorf("%w: clean record with unsynced payload", ErrValidation)
	}
	return nil
}

// UnmarshalPayload decodes the record payload into the provided structure.
func (r *Record) UnmarshalPayload(v any) error {
	return json.Unmarshal(r.Payload, v)
}
