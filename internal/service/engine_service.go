package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/platform/logger"
	"github.com/halcyonfit/halcyon-engine/internal/syncer"
)

// GoalCalculator computes a complete goal set for a profile. The
// computation is total: it always yields a value, substituting safe
// defaults for anything it cannot calculate.
type GoalCalculator interface {
	Calculate(profile *domain.UserProfile) *domain.GoalSet
}

// SyncCoordinator is the subset of the sync coordinator the service needs.
type SyncCoordinator interface {
	SaveLocalFirst(ctx context.Context, record *domain.Record) error
	TrySyncNow(ctx context.Context, record *domain.Record) error
	ReconcileAll(ctx context.Context, maxWorkers int) (syncer.SyncOutcome, error)
	CurrentStatus(ctx context.Context) (domain.SyncStatus, error)
	PendingCount(ctx context.Context) (int, error)
}

// StatusStreamer provides subscriptions to the derived sync status stream.
type StatusStreamer interface {
	Subscribe() (<-chan domain.SyncStatus, func())
	Last() (domain.SyncStatus, bool)
}

// EngineService is the application facade: goal computation, local-first
// saves with opportunistic sync, and sync status introspection.
type EngineService interface {
	// CalculateGoals computes the three metric goals for a profile. It
	// never fails: uncomputable metrics carry fallback defaults and are
	// tagged with their source.
	CalculateGoals(ctx context.Context, profile *domain.UserProfile) *domain.GoalSet

	// SaveProfile persists the profile locally (durably, before any
	// network activity) and then attempts an opportunistic push. The
	// returned record reflects the post-save state: dirty if the push
	// failed or was skipped, clean if it landed.
	SaveProfile(ctx context.Context, profile *domain.UserProfile) (*domain.Record, error)

	// SaveGoals computes the goals for the profile, persists the goal set
	// locally and attempts an opportunistic push.
	SaveGoals(ctx context.Context, profile *domain.UserProfile) (*domain.Record, *domain.GoalSet, error)

	// SyncPendingChanges runs a manual reconciliation pass. It returns
	// ErrOperationRequiresNetwork while the engine is known to be offline.
	SyncPendingChanges(ctx context.Context) (syncer.SyncOutcome, error)

	// PendingSyncCount returns the number of records awaiting sync.
	PendingSyncCount(ctx context.Context) (int, error)

	// Status derives the current sync status; never cached.
	Status(ctx context.Context) (domain.SyncStatus, error)

	// StatusStream subscribes to status changes. The cancel function must
	// be called when the consumer is done.
	StatusStream() (<-chan domain.SyncStatus, func())

	// CanProceedOffline consults the offline policy for the operation.
	// Returns ErrUnknownOperation for operation kinds not in the table.
	CanProceedOffline(operation syncer.OperationKind) (bool, error)
}

// engineServiceImpl implements the EngineService interface
type engineServiceImpl struct {
	calculator  GoalCalculator
	coordinator SyncCoordinator
	streamer    StatusStreamer
	workerCount int
	logger      *slog.Logger
	now         func() time.Time
}

// NewEngineService creates a new EngineService.
// It returns an error if any of the required dependencies are nil.
func NewEngineService(
	calculator GoalCalculator,
	coordinator SyncCoordinator,
	streamer StatusStreamer,
	workerCount int,
	logger *slog.Logger,
) (EngineService, error) {
	if calculator == nil {
		return nil, fmt.Errorf("%w: calculator cannot be nil", domain.ErrValidation)
	}
	if coordinator == nil {
		return nil, fmt.Errorf("%w: coordinator cannot be nil", domain.ErrValidation)
	}
	if streamer == nil {
		return nil, fmt.Errorf("%w: streamer cannot be nil", domain.ErrValidation)
	}
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &engineServiceImpl{
		calculator:  calculator,
		coordinator: coordinator,
		streamer:    streamer,
		workerCount: workerCount,
		logger:      logger.With(slog.String("component", "engine_service")),
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// CalculateGoals implements EngineService.CalculateGoals
func (s *engineServiceImpl) CalculateGoals(ctx context.Context, profile *domain.UserProfile) *domain.GoalSet {
	log := logger.FromContextOrDefault(ctx, s.logger)

	goalSet := s.calculator.Calculate(profile)
	log.Debug("goals calculated",
		slog.String("user_id", goalSet.UserID.String()),
		slog.String("steps_source", string(goalSet.Steps.Source)),
		slog.String("calories_source", string(goalSet.Calories.Source)),
		slog.String("heart_points_source", string(goalSet.HeartPoints.Source)))
	return goalSet
}

// SaveProfile implements EngineService.SaveProfile
func (s *engineServiceImpl) SaveProfile(ctx context.Context, profile *domain.UserProfile) (*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed", slog.String("error", err.Error()))
		return nil, err
	}

	record, err := domain.NewRecord(profile.UserID, domain.RecordKindProfile, profile, s.now())
	if err != nil {
		return nil, NewEngineServiceError("save_profile", "failed to build record", err)
	}

	return s.saveAndTrySync(ctx, record)
}

// SaveGoals implements EngineService.SaveGoals
// The goal set is always computed fresh from the submitted profile so a
// stored goal set can never disagree with the profile it was derived from.
func (s *engineServiceImpl) SaveGoals(ctx context.Context, profile *domain.UserProfile) (*domain.Record, *domain.GoalSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed", slog.String("error", err.Error()))
		return nil, nil, err
	}

	goalSet := s.calculator.Calculate(profile)
	record, err := domain.NewRecord(profile.UserID, domain.RecordKindGoalSet, goalSet, s.now())
	if err != nil {
		return nil, nil, NewEngineServiceError("save_goals", "failed to build record", err)
	}

	saved, err := s.saveAndTrySync(ctx, record)
	if err != nil {
		return nil, nil, err
	}
	return saved, goalSet, nil
}

// saveAndTrySync performs the local-first save and then a best-effort push.
// A failed push is not an error: the save already succeeded and the record
// stays dirty for reconciliation.
func (s *engineServiceImpl) saveAndTrySync(ctx context.Context, record *domain.Record) (*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.coordinator.SaveLocalFirst(ctx, record); err != nil {
		return nil, NewEngineServiceError("save_record", "failed to save locally", err)
	}

	if err := s.coordinator.TrySyncNow(ctx, record); err != nil {
		switch {
		case errors.Is(err, syncer.ErrSyncInFlight):
			log.Debug("push already in flight",
				slog.String("record_id", record.ID.String()))
		case errors.Is(err, syncer.ErrSyncPending):
			log.Debug("opportunistic push deferred",
				slog.String("record_id", record.ID.String()),
				slog.String("reason", err.Error()))
		default:
			log.Warn("opportunistic push failed",
				slog.String("record_id", record.ID.String()),
				slog.String("error", err.Error()))
		}
	} else {
		record.MarkSynced(s.now())
	}

	return record, nil
}

// SyncPendingChanges implements EngineService.SyncPendingChanges
func (s *engineServiceImpl) SyncPendingChanges(ctx context.Context) (syncer.SyncOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	status, err := s.coordinator.CurrentStatus(ctx)
	if err != nil {
		return syncer.SyncOutcome{}, NewEngineServiceError("manual_sync", "failed to derive status", err)
	}
	if status == domain.SyncStatusOfflineNoChanges || status == domain.SyncStatusOfflineWithChanges {
		log.Info("manual sync rejected while offline")
		return syncer.SyncOutcome{}, ErrOperationRequiresNetwork
	}

	outcome, err := s.coordinator.ReconcileAll(ctx, s.workerCount)
	if err != nil {
		return outcome, NewEngineServiceError("manual_sync", "reconciliation failed", err)
	}
	return outcome, nil
}

// PendingSyncCount implements EngineService.PendingSyncCount
func (s *engineServiceImpl) PendingSyncCount(ctx context.Context) (int, error) {
	count, err := s.coordinator.PendingCount(ctx)
	if err != nil {
		return 0, NewEngineServiceError("pending_count", "failed to count pending records", err)
	}
	return count, nil
}

// Status implements EngineService.Status
func (s *engineServiceImpl) Status(ctx context.Context) (domain.SyncStatus, error) {
	status, err := s.coordinator.CurrentStatus(ctx)
	if err != nil {
		return status, NewEngineServiceError("status", "failed to derive status", err)
	}
	return status, nil
}

// StatusStream implements EngineService.StatusStream
func (s *engineServiceImpl) StatusStream() (<-chan domain.SyncStatus, func()) {
	return s.streamer.Subscribe()
}

// CanProceedOffline implements EngineService.CanProceedOffline
func (s *engineServiceImpl) CanProceedOffline(operation syncer.OperationKind) (bool, error) {
	if !syncer.KnownOperation(operation) {
		return false, fmt.Errorf("%w: %q", ErrUnknownOperation, operation)
	}
	return syncer.CanProceedOffline(operation), nil
}
