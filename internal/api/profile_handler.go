package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/halcyonfit/halcyon-engine/internal/api/shared"
	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/service"
)

// ProfileHandler handles profile and goal HTTP requests.
type ProfileHandler struct {
	engine    service.EngineService
	validator *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(engine service.EngineService) *ProfileHandler {
	return &ProfileHandler{
		engine:    engine,
		validator: validator.New(),
	}
}

// profileFromRequest builds the domain profile for the authenticated user.
func profileFromRequest(userID uuid.UUID, req ProfileRequest) *domain.UserProfile {
	return &domain.UserProfile{
		UserID:        userID,
		Age:           req.Age,
		Sex:           domain.Sex(req.Sex),
		HeightCM:      req.HeightCM,
		WeightKG:      req.WeightKG,
		ActivityLevel: domain.ActivityLevel(req.ActivityLevel),
		UpdatedAt:     time.Now().UTC(),
	}
}

// decodeProfile parses and tag-validates the request body. Responds with
// 400 itself and returns false when the body is unusable.
func (h *ProfileHandler) decodeProfile(w http.ResponseWriter, r *http.Request) (ProfileRequest, bool) {
	var req ProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return req, false
	}
	return req, true
}

// authenticatedUser extracts the user ID placed in the context by the auth
// middleware. Responds with 401 itself and returns false when missing.
func authenticatedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// SaveProfile handles PUT /api/profile requests.
// The profile is saved locally first; the response reports whether the
// opportunistic push landed (record.dirty=false) or is deferred.
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeProfile(w, r)
	if !ok {
		return
	}

	profile := profileFromRequest(userID, req)
	record, err := h.engine.SaveProfile(r.Context(), profile)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SaveResponse{Record: recordToResponse(record)})
}

// CalculateGoals handles POST /api/goals/calculate requests.
// The calculation is total: invalid attributes produce fallback goals
// rather than errors, so this endpoint never rejects a parseable body.
func (h *ProfileHandler) CalculateGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	goalSet := h.engine.CalculateGoals(r.Context(), profileFromRequest(userID, req))
	shared.RespondWithJSON(w, r, http.StatusOK, goalSetToResponse(goalSet))
}

// SaveGoals handles POST /api/goals requests.
// Goals are recomputed from the submitted profile and persisted locally
// with an opportunistic push.
func (h *ProfileHandler) SaveGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeProfile(w, r)
	if !ok {
		return
	}

	record, goalSet, err := h.engine.SaveGoals(r.Context(), profileFromRequest(userID, req))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	goals := goalSetToResponse(goalSet)
	shared.RespondWithJSON(w, r, http.StatusOK, SaveResponse{
		Record: recordToResponse(record),
		Goals:  &goals,
	})
}
