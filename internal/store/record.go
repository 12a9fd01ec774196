package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// RecordStore defines the interface for the local-first persistence of
// syncable records. It is the engine's authoritative cache: every mutation
// lands here synchronously before any network activity is attempted.
//
// Implementations must serialize writes to the same record ID - the
// read-modify-write of the payload and dirty flag is atomic per key -
// while writes to different keys may proceed independently.
type RecordStore interface {
	// Upsert writes the record's payload with dirty=true and the given
	// updated timestamp, creating the row on first write. Last write wins
	// for the same record ID.
	// Returns a StorageError-wrapped failure if the local store itself
	// fails; such failures are fatal to the in-progress operation.
	Upsert(ctx context.Context, record *domain.Record) error

	// Get retrieves a record by its ID.
	// Returns ErrRecordNotFound if the record does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Record, error)

	// MarkSynced clears the dirty flag and sets the last-synced timestamp,
	// but only if the record's payload has not been rewritten after the
	// given version timestamp. A record edited mid-push stays dirty, so a
	// stale push acknowledgment can never mask an unsynced payload.
	// Returns ErrRecordNotFound if the record does not exist.
	MarkSynced(ctx context.Context, id uuid.UUID, version time.Time, syncedAt time.Time) error

	// ListDirty returns all records currently flagged dirty, oldest update
	// first.
	ListDirty(ctx context.Context) ([]*domain.Record, error)

	// ListDirtySince returns the dirty records updated at or after the
	// given timestamp, oldest update first.
	ListDirtySince(ctx context.Context, since time.Time) ([]*domain.Record, error)

	// CountDirty returns the number of dirty records. The sync status is
	// derived from this count and is always recomputed, never cached.
	CountDirty(ctx context.Context) (int, error)
}
