package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// ReconcilerConfig holds configuration for the background reconciler.
type ReconcilerConfig struct {
	// Interval between scheduled reconciliation passes. If zero, defaults
	// to 5 minutes.
	Interval time.Duration

	// WorkerCount bounds per-pass push concurrency. If zero or negative,
	// defaults to 1.
	WorkerCount int
}

// Reconciler runs reconciliation passes in the background: one on every
// offline-to-online transition, and one per scheduled interval as a safety
// net for pushes that failed while online.
type Reconciler struct {
	coordinator  *Coordinator
	connectivity ConnectivityObserver
	config       ReconcilerConfig
	logger       *slog.Logger
}

// NewReconciler creates a Reconciler. If logger is nil, the default logger
// is used.
func NewReconciler(
	coordinator *Coordinator,
	connectivity ConnectivityObserver,
	config ReconcilerConfig,
	logger *slog.Logger,
) *Reconciler {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		coordinator:  coordinator,
		connectivity: connectivity,
		config:       config,
		logger:       logger.With(slog.String("component", "reconciler")),
	}
}

// Run blocks until ctx is cancelled, triggering reconciliation passes on
// reconnect edges and on the scheduled interval. A cancelled pass leaves
// synced records synced and unfinished ones dirty; the next pass resumes
// where it left off.
func (r *Reconciler) Run(ctx context.Context) {
	connectivityCh := r.connectivity.Observe(ctx)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	previous := r.connectivity.IsOnline(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("reconciler stopping")
			return

		case state, ok := <-connectivityCh:
			if !ok {
				return
			}
			// Only the offline/unknown -> online edge triggers a pass.
			if state == domain.OnlineStateOnline && previous != domain.OnlineStateOnline {
				r.logger.Info("connectivity restored, reconciling")
				r.runPass(ctx)
			}
			previous = state

		case <-ticker.C:
			if r.connectivity.IsOnline(ctx) == domain.OnlineStateOnline {
				r.runPass(ctx)
			}
		}
	}
}

// runPass executes a single reconciliation pass, logging the outcome.
func (r *Reconciler) runPass(ctx context.Context) {
	outcome, err := r.coordinator.ReconcileAll(ctx, r.config.WorkerCount)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.logger.Info("reconciliation pass cancelled",
			slog.String("outcome", outcome.String()))
	case err != nil:
		r.logger.Error("reconciliation pass failed",
			slog.String("error", err.Error()))
	case outcome.Result != SyncResultNothingToSync:
		r.logger.Info("reconciliation pass completed",
			slog.String("outcome", outcome.String()))
	}
}
