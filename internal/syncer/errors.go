package syncer

import (
	"errors"
	"fmt"
)

// Engine-level error conditions.
var (
	// ErrSyncPending reports that a record was durably saved locally but
	// its remote push failed or was deferred. This is informational, never
	// a data-loss condition: the caller's save succeeded.
	ErrSyncPending = errors.New("saved locally, remote sync pending")

	// ErrSyncInFlight reports that a push for this record is already in
	// progress. The caller's save is durable; the concurrent push covers
	// the payload or reconciliation will.
	ErrSyncInFlight = errors.New("sync already in flight for record")
)

// SyncResult classifies the aggregate outcome of a reconciliation pass.
type SyncResult string

const (
	// SyncResultFullySynced: every enumerated dirty record was pushed.
	SyncResultFullySynced SyncResult = "fully_synced"

	// SyncResultPartiallySynced: some pushes failed (or were skipped
	// because a concurrent push held the record); the failed records stay
	// dirty for the next pass.
	SyncResultPartiallySynced SyncResult = "partially_synced"

	// SyncResultNothingToSync: no dirty records existed.
	SyncResultNothingToSync SyncResult = "nothing_to_sync"
)

// SyncOutcome is the aggregate result of one reconciliation pass. It
// reports counts, not a hard failure: a partial outcome means "will retry
// automatically", never data loss.
type SyncOutcome struct {
	Result      SyncResult `json:"result"`
	SyncedCount int        `json:"synced_count"`
	FailedCount int        `json:"failed_count"`
}

// String renders the outcome for logs.
func (o SyncOutcome) String() string {
	return fmt.Sprintf("%s (synced=%d failed=%d)", o.Result, o.SyncedCount, o.FailedCount)
}

// newSyncOutcome derives the result classification from the counts.
func newSyncOutcome(synced, failed int) SyncOutcome {
	outcome := SyncOutcome{SyncedCount: synced, FailedCount: failed}
	switch {
	case synced == 0 && failed == 0:
		outcome.Result = SyncResultNothingToSync
	case failed == 0:
		outcome.Result = SyncResultFullySynced
	default:
		outcome.Result = SyncResultPartiallySynced
	}
	return outcome
}
