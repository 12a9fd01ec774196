package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/halcyonfit/halcyon-engine/internal/api/shared"
	"github.com/halcyonfit/halcyon-engine/internal/redact"
	"github.com/halcyonfit/halcyon-engine/internal/service"
	"github.com/halcyonfit/halcyon-engine/internal/syncer"
)

// SyncHandler handles sync-related HTTP requests.
type SyncHandler struct {
	engine service.EngineService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(engine service.EngineService) *SyncHandler {
	return &SyncHandler{engine: engine}
}

// TriggerSync handles POST /api/sync requests.
// A manual sync while offline is rejected with 409 per the offline policy.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	outcome, err := h.engine.SyncPendingChanges(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

// GetStatus handles GET /api/sync/status requests.
func (h *SyncHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	status, err := h.engine.Status(r.Context())
	if err != nil {
		// The status itself is still meaningful (Unknown); surface it
		// with the count we could not determine.
		slog.Warn("sync status degraded", "error", redact.Error(err))
		shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: string(status)})
		return
	}

	count, err := h.engine.PendingSyncCount(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{
		Status:       string(status),
		PendingCount: count,
	})
}

// StreamStatus handles GET /api/sync/status/stream requests. It emits the
// derived sync status as server-sent events, starting with the current
// value and then one event per change, until the client disconnects.
func (h *SyncHandler) StreamStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	updates, cancel := h.engine.StatusStream()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case status, open := <-updates:
			if !open {
				return
			}
			payload, err := json.Marshal(StatusEvent{Status: string(status)})
			if err != nil {
				slog.Error("failed to encode status event", "error", redact.Error(err))
				return
			}
			fmt.Fprintf(w, "event: sync_status\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// GetOfflinePolicy handles GET /api/sync/policy/{operation} requests.
func (h *SyncHandler) GetOfflinePolicy(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	operation := syncer.OperationKind(chi.URLParam(r, "operation"))
	allowed, err := h.engine.CanProceedOffline(operation)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PolicyResponse{
		Operation:         string(operation),
		CanProceedOffline: allowed,
	})
}
