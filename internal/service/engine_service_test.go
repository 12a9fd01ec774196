package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/domain/goals"
	"github.com/halcyonfit/halcyon-engine/internal/store"
	"github.com/halcyonfit/halcyon-engine/internal/syncer"
)

// fakeCoordinator records service calls and plays back configured results.
type fakeCoordinator struct {
	saved      []*domain.Record
	syncTried  []*domain.Record
	reconciled int

	failSave    error
	failTrySync error
	status      domain.SyncStatus
	statusErr   error
	outcome     syncer.SyncOutcome
	outcomeErr  error
	pending     int
	pendingErr  error
}

var _ SyncCoordinator = (*fakeCoordinator)(nil)

func (c *fakeCoordinator) SaveLocalFirst(_ context.Context, record *domain.Record) error {
	if c.failSave != nil {
		return c.failSave
	}
	c.saved = append(c.saved, record)
	return nil
}

func (c *fakeCoordinator) TrySyncNow(_ context.Context, record *domain.Record) error {
	c.syncTried = append(c.syncTried, record)
	return c.failTrySync
}

func (c *fakeCoordinator) ReconcileAll(_ context.Context, _ int) (syncer.SyncOutcome, error) {
	c.reconciled++
	return c.outcome, c.outcomeErr
}

func (c *fakeCoordinator) CurrentStatus(_ context.Context) (domain.SyncStatus, error) {
	return c.status, c.statusErr
}

func (c *fakeCoordinator) PendingCount(_ context.Context) (int, error) {
	return c.pending, c.pendingErr
}

// fakeStreamer hands out a fixed channel.
type fakeStreamer struct {
	ch        chan domain.SyncStatus
	cancelled bool
}

var _ StatusStreamer = (*fakeStreamer)(nil)

func (s *fakeStreamer) Subscribe() (<-chan domain.SyncStatus, func()) {
	return s.ch, func() { s.cancelled = true }
}

func (s *fakeStreamer) Last() (domain.SyncStatus, bool) {
	return domain.SyncStatusUnknown, false
}

func newTestService(t *testing.T, coordinator *fakeCoordinator) EngineService {
	t.Helper()
	calculator := goals.NewOrchestrator(goals.NewDefaultParams(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc, err := NewEngineService(calculator, coordinator,
		&fakeStreamer{ch: make(chan domain.SyncStatus, 1)}, 2,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return svc
}

func validProfile(t *testing.T) *domain.UserProfile {
	t.Helper()
	profile, err := domain.NewUserProfile(uuid.New(), 30, domain.SexFemale, 170, 65, domain.ActivityModerate)
	require.NoError(t, err)
	return profile
}

func TestNewEngineService(t *testing.T) {
	t.Parallel()

	calculator := goals.NewOrchestrator(nil, nil)
	coordinator := &fakeCoordinator{}
	streamer := &fakeStreamer{ch: make(chan domain.SyncStatus)}

	testCases := []struct {
		name        string
		calculator  GoalCalculator
		coordinator SyncCoordinator
		streamer    StatusStreamer
	}{
		{"nil calculator", nil, coordinator, streamer},
		{"nil coordinator", calculator, nil, streamer},
		{"nil streamer", calculator, coordinator, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewEngineService(tc.calculator, tc.coordinator, tc.streamer, 1, nil)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCalculateGoals(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, &fakeCoordinator{})

	t.Run("valid profile yields calculated goals", func(t *testing.T) {
		t.Parallel()
		goalSet := svc.CalculateGoals(context.Background(), validProfile(t))
		require.NotNil(t, goalSet)
		assert.NoError(t, goalSet.Validate())
		assert.Equal(t, domain.GoalSourceCalculated, goalSet.Steps.Source)
	})

	t.Run("computation is total even for a nil profile", func(t *testing.T) {
		t.Parallel()
		goalSet := svc.CalculateGoals(context.Background(), nil)
		require.NotNil(t, goalSet)
		for _, goal := range goalSet.Goals() {
			assert.Equal(t, domain.GoalSourceFallback, goal.Source)
			assert.Positive(t, goal.Value)
		}
	})
}

func TestSaveProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("saves locally then attempts a push", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{}
		svc := newTestService(t, coordinator)

		record, err := svc.SaveProfile(ctx, validProfile(t))
		require.NoError(t, err)
		require.Len(t, coordinator.saved, 1)
		require.Len(t, coordinator.syncTried, 1)
		assert.Equal(t, domain.RecordKindProfile, record.Kind)
		assert.False(t, record.Dirty, "successful push marks the returned record clean")
	})

	t.Run("failed push still succeeds with a dirty record", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{failTrySync: syncer.ErrSyncPending}
		svc := newTestService(t, coordinator)

		record, err := svc.SaveProfile(ctx, validProfile(t))
		require.NoError(t, err, "a deferred push is not a save failure")
		assert.True(t, record.Dirty)
	})

	t.Run("invalid profile is rejected before saving", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{}
		svc := newTestService(t, coordinator)

		profile := validProfile(t)
		profile.Age = 9

		_, err := svc.SaveProfile(ctx, profile)
		assert.ErrorIs(t, err, domain.ErrAgeOutOfRange)
		assert.Empty(t, coordinator.saved)
	})

	t.Run("local save failure is fatal", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{failSave: store.ErrStorageFailure}
		svc := newTestService(t, coordinator)

		_, err := svc.SaveProfile(ctx, validProfile(t))
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrStorageFailure)

		var svcErr *EngineServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "save_record", svcErr.Operation)
	})
}

func TestSaveGoals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("computes and persists a goal set record", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{failTrySync: syncer.ErrSyncPending}
		svc := newTestService(t, coordinator)
		profile := validProfile(t)

		record, goalSet, err := svc.SaveGoals(ctx, profile)
		require.NoError(t, err)
		require.NotNil(t, goalSet)
		assert.Equal(t, profile.UserID, goalSet.UserID)
		assert.Equal(t, domain.RecordKindGoalSet, record.Kind)
		assert.True(t, record.Dirty)

		var stored domain.GoalSet
		require.NoError(t, record.UnmarshalPayload(&stored))
		assert.Equal(t, goalSet.Steps.Value, stored.Steps.Value)
	})

	t.Run("profile and goal records coexist for one user", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{}
		svc := newTestService(t, coordinator)
		profile := validProfile(t)

		profileRecord, err := svc.SaveProfile(ctx, profile)
		require.NoError(t, err)
		goalRecord, _, err := svc.SaveGoals(ctx, profile)
		require.NoError(t, err)

		assert.NotEqual(t, profileRecord.ID, goalRecord.ID,
			"each record kind has its own identity per user")
	})
}

func TestSyncPendingChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("runs a reconciliation pass while online", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{
			status:  domain.SyncStatusOnlinePendingSync,
			outcome: syncer.SyncOutcome{Result: syncer.SyncResultFullySynced, SyncedCount: 3},
		}
		svc := newTestService(t, coordinator)

		outcome, err := svc.SyncPendingChanges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, coordinator.reconciled)
		assert.Equal(t, 3, outcome.SyncedCount)
	})

	t.Run("rejected while offline", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{status: domain.SyncStatusOfflineWithChanges}
		svc := newTestService(t, coordinator)

		_, err := svc.SyncPendingChanges(ctx)
		assert.ErrorIs(t, err, ErrOperationRequiresNetwork)
		assert.Zero(t, coordinator.reconciled)
	})

	t.Run("unknown connectivity attempts the pass", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{
			status:  domain.SyncStatusUnknown,
			outcome: syncer.SyncOutcome{Result: syncer.SyncResultNothingToSync},
		}
		svc := newTestService(t, coordinator)

		_, err := svc.SyncPendingChanges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, coordinator.reconciled)
	})

	t.Run("partial outcome passes through", func(t *testing.T) {
		t.Parallel()
		coordinator := &fakeCoordinator{
			status: domain.SyncStatusOnlinePendingSync,
			outcome: syncer.SyncOutcome{
				Result:      syncer.SyncResultPartiallySynced,
				SyncedCount: 2,
				FailedCount: 1,
			},
		}
		svc := newTestService(t, coordinator)

		outcome, err := svc.SyncPendingChanges(ctx)
		require.NoError(t, err)
		assert.Equal(t, syncer.SyncResultPartiallySynced, outcome.Result)
		assert.Equal(t, 1, outcome.FailedCount)
	})
}

func TestCanProceedOffline(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, &fakeCoordinator{})

	allowed, err := svc.CanProceedOffline(syncer.OpSaveProfile)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CanProceedOffline(syncer.OpManualSync)
	require.NoError(t, err)
	assert.False(t, allowed)

	_, err = svc.CanProceedOffline(syncer.OperationKind("nonsense"))
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestStatusAndPendingCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	coordinator := &fakeCoordinator{
		status:  domain.SyncStatusOfflineNoChanges,
		pending: 4,
	}
	svc := newTestService(t, coordinator)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusOfflineNoChanges, status)

	count, err := svc.PendingSyncCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	t.Run("errors are wrapped as service errors", func(t *testing.T) {
		t.Parallel()
		failing := &fakeCoordinator{
			statusErr:  errors.New("boom"),
			pendingErr: errors.New("boom"),
		}
		failingSvc := newTestService(t, failing)

		var svcErr *EngineServiceError
		_, err := failingSvc.Status(ctx)
		assert.ErrorAs(t, err, &svcErr)
		_, err = failingSvc.PendingSyncCount(ctx)
		assert.ErrorAs(t, err, &svcErr)
	})
}

func TestStatusStream(t *testing.T) {
	t.Parallel()

	streamer := &fakeStreamer{ch: make(chan domain.SyncStatus, 1)}
	calculator := goals.NewOrchestrator(nil, nil)
	svc, err := NewEngineService(calculator, &fakeCoordinator{}, streamer, 1, nil)
	require.NoError(t, err)

	streamer.ch <- domain.SyncStatusOnlineSynced
	ch, cancel := svc.StatusStream()

	select {
	case status := <-ch:
		assert.Equal(t, domain.SyncStatusOnlineSynced, status)
	case <-time.After(time.Second):
		t.Fatal("expected a status value")
	}

	cancel()
	assert.True(t, streamer.cancelled)
}
