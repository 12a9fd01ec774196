package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/store"
)

// Coordinator is the sync engine's decision point. Every mutation goes
// through SaveLocalFirst (local durability before any network), pushes are
// opportunistic via TrySyncNow, and ReconcileAll drains dirty records when
// connectivity returns. The only state the coordinator holds besides its
// collaborators is the single-flight set; status is always derived fresh
// from connectivity and the dirty count.
type Coordinator struct {
	store        store.RecordStore
	remote       RemoteClient
	connectivity ConnectivityObserver
	logger       *slog.Logger

	// now is injectable for deterministic tests.
	now func() time.Time

	// inFlight guards against two concurrent pushes for the same record,
	// keyed by record ID.
	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}

	// onDirtyChange, when set, is invoked after any mutation that may have
	// changed the dirty count. The status notifier uses it to recompute
	// the derived status.
	onDirtyChange func()
}

// NewCoordinator creates a Coordinator with its collaborators injected.
// There is no ambient state: the store, remote client and connectivity
// observer are the only ways the coordinator touches the outside world.
// If logger is nil, the default logger is used.
func NewCoordinator(
	recordStore store.RecordStore,
	remote RemoteClient,
	connectivity ConnectivityObserver,
	logger *slog.Logger,
) *Coordinator {
	if recordStore == nil {
		panic("record store cannot be nil")
	}
	if remote == nil {
		panic("remote client cannot be nil")
	}
	if connectivity == nil {
		panic("connectivity observer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		store:        recordStore,
		remote:       remote,
		connectivity: connectivity,
		logger:       logger.With(slog.String("component", "sync_coordinator")),
		now:          func() time.Time { return time.Now().UTC() },
		inFlight:     make(map[uuid.UUID]struct{}),
	}
}

// SetDirtyChangeNotifier registers the hook invoked after mutations that
// may change the dirty count. Must be called before the coordinator is
// shared across goroutines.
func (c *Coordinator) SetDirtyChangeNotifier(fn func()) {
	c.onDirtyChange = fn
}

// SaveLocalFirst writes the record to the local store with dirty=true.
// It returns only after local durability is achieved; a local store failure
// is fatal to the operation and is surfaced unwrapped for the caller to
// retry. No network activity happens here.
func (c *Coordinator) SaveLocalFirst(ctx context.Context, record *domain.Record) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := c.store.Upsert(ctx, record); err != nil {
		c.logger.Error("local save failed",
			slog.String("record_id", record.ID.String()),
			slog.String("kind", string(record.Kind)),
			slog.String("error", err.Error()))
		return err
	}

	c.logger.Debug("record saved locally",
		slog.String("record_id", record.ID.String()),
		slog.String("kind", string(record.Kind)))

	c.notifyDirtyChange()
	return nil
}

// TrySyncNow attempts an immediate push of a locally saved record. On
// success the record is marked synced. On any failure the record simply
// stays dirty and ErrSyncPending is returned: the caller's save already
// succeeded, only freshness is deferred.
//
// A push is only attempted while connectivity is not confirmed Offline: a
// push into a known-dead network would just burn the caller's time on
// retries that cannot succeed. Unknown connectivity still attempts the
// push optimistically.
func (c *Coordinator) TrySyncNow(ctx context.Context, record *domain.Record) error {
	if c.connectivity.IsOnline(ctx) == domain.OnlineStateOffline {
		return fmt.Errorf("%w: offline, record %s queued for reconciliation",
			ErrSyncPending, record.ID)
	}

	if !c.acquire(record.ID) {
		// A concurrent push (reconciliation or another save) holds this
		// record; it will cover the payload or leave it dirty for later.
		return fmt.Errorf("%w: %s", ErrSyncInFlight, record.ID)
	}
	defer c.release(record.ID)

	return c.pushAndMark(ctx, record)
}

// ReconcileAll enumerates every dirty record and pushes each independently,
// bounded by maxWorkers concurrent pushes. One record's failure never
// aborts the rest. Records held by a concurrent push are skipped and
// counted as failed for this pass; they stay dirty and the next pass picks
// them up.
//
// The pass honors ctx cancellation between records: pushes already started
// finish their store bookkeeping, unstarted ones are abandoned. Synced
// records stay synced, unfinished ones stay dirty.
func (c *Coordinator) ReconcileAll(ctx context.Context, maxWorkers int) (SyncOutcome, error) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	dirty, err := c.store.ListDirty(ctx)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("enumerating dirty records: %w", err)
	}
	if len(dirty) == 0 {
		return newSyncOutcome(0, 0), nil
	}

	c.logger.Info("reconciliation pass starting",
		slog.Int("dirty_count", len(dirty)),
		slog.Int("max_workers", maxWorkers))

	var (
		wg       sync.WaitGroup
		countsMu sync.Mutex
		synced   int
		failed   int
	)
	sem := make(chan struct{}, maxWorkers)

	cancelled := false
	for _, record := range dirty {
		if !cancelled {
			select {
			case <-ctx.Done():
				cancelled = true
			case sem <- struct{}{}:
			}
		}
		if cancelled {
			// Unstarted records stay dirty; nothing to undo.
			countsMu.Lock()
			failed++
			countsMu.Unlock()
			continue
		}

		wg.Add(1)
		go func(record *domain.Record) {
			defer wg.Done()
			defer func() { <-sem }()

			ok := c.reconcileOne(ctx, record)

			countsMu.Lock()
			if ok {
				synced++
			} else {
				failed++
			}
			countsMu.Unlock()
		}(record)
	}

	wg.Wait()

	outcome := newSyncOutcome(synced, failed)
	c.logger.Info("reconciliation pass finished", slog.String("outcome", outcome.String()))

	if synced > 0 {
		c.notifyDirtyChange()
	}
	if cancelled {
		return outcome, ctx.Err()
	}
	return outcome, nil
}

// reconcileOne pushes a single record under its single-flight guard.
// Returns true if the record was pushed and marked synced.
func (c *Coordinator) reconcileOne(ctx context.Context, record *domain.Record) bool {
	if !c.acquire(record.ID) {
		c.logger.Debug("skipping record held by concurrent push",
			slog.String("record_id", record.ID.String()))
		return false
	}
	defer c.release(record.ID)

	if err := c.pushAndMark(ctx, record); err != nil {
		return false
	}
	return true
}

// pushAndMark performs one push attempt and, on success, marks the pushed
// payload version synced. Callers must hold the record's single-flight
// slot.
func (c *Coordinator) pushAndMark(ctx context.Context, record *domain.Record) error {
	if err := c.remote.Push(ctx, record); err != nil {
		c.logger.Warn("remote push failed, record stays dirty",
			slog.String("record_id", record.ID.String()),
			slog.String("kind", string(record.Kind)),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrSyncPending, err)
	}

	// Mark only the pushed payload version synced. If a newer local write
	// landed mid-push the record stays dirty and reconciliation will push
	// the newer payload.
	err := c.store.MarkSynced(ctx, record.ID, record.UpdatedAt, c.now())
	switch {
	case err == nil:
		c.logger.Debug("record synced",
			slog.String("record_id", record.ID.String()),
			slog.String("kind", string(record.Kind)))
		c.notifyDirtyChange()
		return nil
	case store.IsNotFoundError(err):
		// The record vanished between push and bookkeeping; nothing left
		// to mark.
		c.logger.Warn("pushed record no longer exists locally",
			slog.String("record_id", record.ID.String()))
		return nil
	default:
		c.logger.Error("failed to mark record synced",
			slog.String("record_id", record.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrSyncPending, err)
	}
}

// CurrentStatus derives the process-wide sync status from live
// connectivity and the current dirty count. It is never cached.
func (c *Coordinator) CurrentStatus(ctx context.Context) (domain.SyncStatus, error) {
	online := c.connectivity.IsOnline(ctx)

	count, err := c.store.CountDirty(ctx)
	if err != nil {
		return domain.SyncStatusUnknown, fmt.Errorf("counting dirty records: %w", err)
	}

	return domain.DeriveSyncStatus(online, count), nil
}

// PendingCount returns the number of records awaiting a successful push.
func (c *Coordinator) PendingCount(ctx context.Context) (int, error) {
	return c.store.CountDirty(ctx)
}

// acquire claims the single-flight slot for a record ID. Returns false if
// a push for that record is already in progress.
func (c *Coordinator) acquire(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[id]; busy {
		return false
	}
	c.inFlight[id] = struct{}{}
	return true
}

// release frees the single-flight slot for a record ID.
func (c *Coordinator) release(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
}

// notifyDirtyChange invokes the registered dirty-change hook, if any.
func (c *Coordinator) notifyDirtyChange() {
	if c.onDirtyChange != nil {
		c.onDirtyChange()
	}
}
