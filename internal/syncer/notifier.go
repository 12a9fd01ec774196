package syncer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// StatusNotifier turns the two input signals - connectivity changes and
// dirty-count changes - into a de-duplicated stream of derived SyncStatus
// values. It is an explicit combine-latest: the status is recomputed
// whenever either input fires, and subscribers only see it when the
// derived value actually changed.
type StatusNotifier struct {
	coordinator  *Coordinator
	connectivity ConnectivityObserver
	logger       *slog.Logger

	// dirtyCh coalesces dirty-count change signals; capacity 1 because
	// only the fact that something changed matters, not how many times.
	dirtyCh chan struct{}

	mu          sync.Mutex
	last        domain.SyncStatus
	hasLast     bool
	subscribers map[int]chan domain.SyncStatus
	nextSubID   int
}

// NewStatusNotifier creates a StatusNotifier and registers itself as the
// coordinator's dirty-change hook. If logger is nil, the default logger is
// used.
func NewStatusNotifier(
	coordinator *Coordinator,
	connectivity ConnectivityObserver,
	logger *slog.Logger,
) *StatusNotifier {
	if logger == nil {
		logger = slog.Default()
	}

	n := &StatusNotifier{
		coordinator:  coordinator,
		connectivity: connectivity,
		logger:       logger.With(slog.String("component", "status_notifier")),
		dirtyCh:      make(chan struct{}, 1),
		subscribers:  make(map[int]chan domain.SyncStatus),
	}

	coordinator.SetDirtyChangeNotifier(n.markDirtyChanged)
	return n
}

// Subscribe registers a new status listener. The returned channel receives
// every change of the derived status (buffered; slow consumers drop
// intermediate values rather than block the engine). The cancel function
// unregisters the listener and closes the channel.
func (n *StatusNotifier) Subscribe() (<-chan domain.SyncStatus, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextSubID
	n.nextSubID++

	ch := make(chan domain.SyncStatus, 8)
	n.subscribers[id] = ch

	// New subscribers immediately learn the latest known status.
	if n.hasLast {
		ch <- n.last
	}

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subscribers[id]; ok {
			delete(n.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Run drives the combine-latest loop until ctx is cancelled. It recomputes
// the derived status on every connectivity change and every dirty-count
// signal, publishing only actual changes. All subscriber channels are
// closed on exit.
func (n *StatusNotifier) Run(ctx context.Context) {
	defer n.closeAll()

	connectivityCh := n.connectivity.Observe(ctx)

	// Publish the initial status so subscribers do not wait for the first
	// change.
	n.recomputeAndPublish(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-connectivityCh:
			if !ok {
				return
			}
			n.recomputeAndPublish(ctx)
		case <-n.dirtyCh:
			n.recomputeAndPublish(ctx)
		}
	}
}

// markDirtyChanged signals that the dirty count may have changed. Safe to
// call from any goroutine; signals coalesce.
func (n *StatusNotifier) markDirtyChanged() {
	select {
	case n.dirtyCh <- struct{}{}:
	default:
	}
}

// recomputeAndPublish derives the current status and fans it out if it
// differs from the last published value.
func (n *StatusNotifier) recomputeAndPublish(ctx context.Context) {
	status, err := n.coordinator.CurrentStatus(ctx)
	if err != nil {
		n.logger.Error("failed to derive sync status", slog.String("error", err.Error()))
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.hasLast && status == n.last {
		return
	}
	n.last = status
	n.hasLast = true

	n.logger.Debug("sync status changed", slog.String("status", string(status)))

	for _, ch := range n.subscribers {
		select {
		case ch <- status:
		default:
			// Drop rather than block the engine on a slow consumer; the
			// next change will carry the fresher value anyway.
		}
	}
}

// Last returns the most recently published status and whether one exists.
func (n *StatusNotifier) Last() (domain.SyncStatus, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last, n.hasLast
}

// closeAll closes every subscriber channel.
func (n *StatusNotifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, ch := range n.subscribers {
		delete(n.subscribers, id)
		close(ch)
	}
}
