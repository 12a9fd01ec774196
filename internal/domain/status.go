package domain

// OnlineState is the connectivity observer's answer to "are we online".
// Unknown is distinct from offline: a probe that has not completed yet must
// not be conflated with a confirmed lack of connectivity.
type OnlineState int

const (
	// OnlineStateUnknown means connectivity could not be determined.
	OnlineStateUnknown OnlineState = iota

	// OnlineStateOffline means the remote store is confirmed unreachable.
	OnlineStateOffline

	// OnlineStateOnline means the remote store is confirmed reachable.
	OnlineStateOnline
)

// String returns a human-readable name for the online state.
func (s OnlineState) String() string {
	switch s {
	case OnlineStateOnline:
		return "online"
	case OnlineStateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// SyncStatus is the process-wide synchronization state shown to callers.
// It is derived, never stored: a pure function of connectivity and the
// count of dirty records, recomputed on demand to avoid staleness.
type SyncStatus string

const (
	// SyncStatusOnlineSynced: online and no dirty records.
	SyncStatusOnlineSynced SyncStatus = "online_synced"

	// SyncStatusOnlinePendingSync: online with dirty records awaiting push.
	SyncStatusOnlinePendingSync SyncStatus = "online_pending_sync"

	// SyncStatusOfflineNoChanges: offline and nothing to push.
	SyncStatusOfflineNoChanges SyncStatus = "offline_no_changes"

	// SyncStatusOfflineWithChanges: offline with dirty records that will be
	// reconciled when connectivity returns.
	SyncStatusOfflineWithChanges SyncStatus = "offline_with_changes"

	// SyncStatusUnknown: connectivity could not be determined.
	SyncStatusUnknown SyncStatus = "unknown"
)

// DeriveSyncStatus computes the four-way status table from the connectivity
// state and the number of dirty records. An unknown online state resolves to
// SyncStatusUnknown regardless of the dirty count.
func DeriveSyncStatus(online OnlineState, dirtyCount int) SyncStatus {
	switch online {
	case OnlineStateOnline:
		if dirtyCount > 0 {
			return SyncStatusOnlinePendingSync
		}
		return SyncStatusOnlineSynced
	case OnlineStateOffline:
		if dirtyCount > 0 {
			return SyncStatusOfflineWithChanges
		}
		return SyncStatusOfflineNoChanges
	default:
		return SyncStatusUnknown
	}
}
