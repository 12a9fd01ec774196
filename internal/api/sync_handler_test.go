package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonfit/halcyon-engine/internal/api/shared"
	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/service"
	"github.com/halcyonfit/halcyon-engine/internal/store"
	"github.com/halcyonfit/halcyon-engine/internal/syncer"

	"github.com/google/uuid"
)

func authedContext() context.Context {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	return context.WithValue(context.Background(), shared.UserIDContextKey, userID)
}

func TestSyncHandler_TriggerSync(t *testing.T) {
	tests := []struct {
		name           string
		ctx            context.Context
		setupMock      func(*MockEngineService)
		expectedStatus int
		expectedErrMsg string
		check          func(t *testing.T, respBody map[string]interface{})
	}{
		{
			name: "fully_synced",
			ctx:  authedContext(),
			setupMock: func(m *MockEngineService) {
				m.SyncPendingChangesFn = func(ctx context.Context) (syncer.SyncOutcome, error) {
					return syncer.SyncOutcome{
						Result:      syncer.SyncResultFullySynced,
						SyncedCount: 3,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, respBody map[string]interface{}) {
				assert.Equal(t, string(syncer.SyncResultFullySynced), respBody["result"])
				assert.Equal(t, float64(3), respBody["synced_count"])
				assert.Equal(t, float64(0), respBody["failed_count"])
			},
		},
		{
			name: "partial_sync_is_still_ok",
			ctx:  authedContext(),
			setupMock: func(m *MockEngineService) {
				m.SyncPendingChangesFn = func(ctx context.Context) (syncer.SyncOutcome, error) {
					return syncer.SyncOutcome{
						Result:      syncer.SyncResultPartiallySynced,
						SyncedCount: 2,
						FailedCount: 1,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, respBody map[string]interface{}) {
				assert.Equal(t, string(syncer.SyncResultPartiallySynced), respBody["result"])
				assert.Equal(t, float64(1), respBody["failed_count"])
			},
		},
		{
			name: "offline_rejected_with_conflict",
			ctx:  authedContext(),
			setupMock: func(m *MockEngineService) {
				m.SyncPendingChangesFn = func(ctx context.Context) (syncer.SyncOutcome, error) {
					return syncer.SyncOutcome{}, service.ErrOperationRequiresNetwork
				}
			},
			expectedStatus: http.StatusConflict,
			expectedErrMsg: "requires connectivity",
		},
		{
			name: "storage_failure",
			ctx:  authedContext(),
			setupMock: func(m *MockEngineService) {
				m.SyncPendingChangesFn = func(ctx context.Context) (syncer.SyncOutcome, error) {
					return syncer.SyncOutcome{}, store.ErrStorageFailure
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "unexpected error",
		},
		{
			name:           "missing_user_id",
			ctx:            context.Background(),
			setupMock:      func(m *MockEngineService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "User ID not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEngineService{}
			tt.setupMock(mockService)
			handler := NewSyncHandler(mockService)

			w, respBody := doJSONRequest(t, handler.TriggerSync, http.MethodPost, "/api/sync", nil, tt.ctx)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedErrMsg != "" {
				errorMsg, ok := respBody["error"].(string)
				require.True(t, ok, "expected error field in response")
				assert.Contains(t, errorMsg, tt.expectedErrMsg)
			}
			if tt.check != nil {
				tt.check(t, respBody)
			}
		})
	}
}

func TestSyncHandler_GetStatus(t *testing.T) {
	t.Run("status_with_pending_count", func(t *testing.T) {
		mockService := &MockEngineService{
			StatusFn: func(ctx context.Context) (domain.SyncStatus, error) {
				return domain.SyncStatusOfflineWithChanges, nil
			},
			PendingSyncCountFn: func(ctx context.Context) (int, error) {
				return 4, nil
			},
		}
		handler := NewSyncHandler(mockService)

		w, respBody := doJSONRequest(t, handler.GetStatus, http.MethodGet, "/api/sync/status", nil, authedContext())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(domain.SyncStatusOfflineWithChanges), respBody["status"])
		assert.Equal(t, float64(4), respBody["pending_count"])
	})

	t.Run("degraded_status_still_answers", func(t *testing.T) {
		mockService := &MockEngineService{
			StatusFn: func(ctx context.Context) (domain.SyncStatus, error) {
				return domain.SyncStatusUnknown, store.ErrStorageFailure
			},
		}
		handler := NewSyncHandler(mockService)

		w, respBody := doJSONRequest(t, handler.GetStatus, http.MethodGet, "/api/sync/status", nil, authedContext())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(domain.SyncStatusUnknown), respBody["status"])
	})

	t.Run("count_failure_maps_error", func(t *testing.T) {
		mockService := &MockEngineService{
			StatusFn: func(ctx context.Context) (domain.SyncStatus, error) {
				return domain.SyncStatusOnlineSynced, nil
			},
			PendingSyncCountFn: func(ctx context.Context) (int, error) {
				return 0, store.ErrStorageFailure
			},
		}
		handler := NewSyncHandler(mockService)

		w, _ := doJSONRequest(t, handler.GetStatus, http.MethodGet, "/api/sync/status", nil, authedContext())
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSyncHandler_StreamStatus(t *testing.T) {
	t.Run("streams_events_until_disconnect", func(t *testing.T) {
		updates := make(chan domain.SyncStatus, 4)
		cancelled := false
		mockService := &MockEngineService{
			StatusStreamFn: func() (<-chan domain.SyncStatus, func()) {
				return updates, func() { cancelled = true }
			},
		}
		handler := NewSyncHandler(mockService)

		updates <- domain.SyncStatusOnlinePendingSync
		updates <- domain.SyncStatusOnlineSynced
		close(updates)

		req := httptest.NewRequest(http.MethodGet, "/api/sync/status/stream", nil)
		req = req.WithContext(authedContext())
		w := httptest.NewRecorder()

		handler.StreamStatus(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.True(t, cancelled, "subscription must be released on exit")

		var events []string
		scanner := bufio.NewScanner(w.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data: ") {
				events = append(events, strings.TrimPrefix(line, "data: "))
			}
		}
		require.Len(t, events, 2)
		assert.Contains(t, events[0], string(domain.SyncStatusOnlinePendingSync))
		assert.Contains(t, events[1], string(domain.SyncStatusOnlineSynced))
	})

	t.Run("client_disconnect_stops_stream", func(t *testing.T) {
		updates := make(chan domain.SyncStatus)
		mockService := &MockEngineService{
			StatusStreamFn: func() (<-chan domain.SyncStatus, func()) {
				return updates, func() {}
			},
		}
		handler := NewSyncHandler(mockService)

		ctx, cancel := context.WithCancel(authedContext())
		req := httptest.NewRequest(http.MethodGet, "/api/sync/status/stream", nil)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamStatus(w, req)
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("stream handler did not exit after client disconnect")
		}
	})

	t.Run("requires_authentication", func(t *testing.T) {
		handler := NewSyncHandler(&MockEngineService{})
		req := httptest.NewRequest(http.MethodGet, "/api/sync/status/stream", nil)
		w := httptest.NewRecorder()

		handler.StreamStatus(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSyncHandler_GetOfflinePolicy(t *testing.T) {
	// Routes the request through chi so URLParam resolves.
	newPolicyRequest := func(operation string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/sync/policy/"+operation, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("operation", operation)
		ctx := context.WithValue(authedContext(), chi.RouteCtxKey, rctx)
		return req.WithContext(ctx)
	}

	t.Run("known_operation_allowed", func(t *testing.T) {
		mockService := &MockEngineService{
			CanProceedOfflineFn: func(operation syncer.OperationKind) (bool, error) {
				assert.Equal(t, syncer.OpSaveProfile, operation)
				return true, nil
			},
		}
		handler := NewSyncHandler(mockService)

		w := httptest.NewRecorder()
		handler.GetOfflinePolicy(w, newPolicyRequest(string(syncer.OpSaveProfile)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"can_proceed_offline":true`)
		assert.Contains(t, w.Body.String(), string(syncer.OpSaveProfile))
	})

	t.Run("manual_sync_denied_offline", func(t *testing.T) {
		mockService := &MockEngineService{
			CanProceedOfflineFn: func(operation syncer.OperationKind) (bool, error) {
				return false, nil
			},
		}
		handler := NewSyncHandler(mockService)

		w := httptest.NewRecorder()
		handler.GetOfflinePolicy(w, newPolicyRequest(string(syncer.OpManualSync)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"can_proceed_offline":false`)
	})

	t.Run("unknown_operation_not_found", func(t *testing.T) {
		mockService := &MockEngineService{
			CanProceedOfflineFn: func(operation syncer.OperationKind) (bool, error) {
				return false, service.ErrUnknownOperation
			},
		}
		handler := NewSyncHandler(mockService)

		w := httptest.NewRecorder()
		handler.GetOfflinePolicy(w, newPolicyRequest("teleport"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Unknown operation")
	})
}
