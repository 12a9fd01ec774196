package api

import (
	"time"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/syncer"
)

// ProfileRequest represents the request body for profile submission and
// goal calculation. Values are validated against the supported ranges; the
// calculation endpoints additionally tolerate out-of-range values by
// falling back to safe defaults.
type ProfileRequest struct {
	Age           int     `json:"age"            validate:"required"`
	Sex           string  `json:"sex"            validate:"required,oneof=female male unspecified"`
	HeightCM      float64 `json:"height_cm"      validate:"required,gt=0"`
	WeightKG      float64 `json:"weight_kg"      validate:"required,gt=0"`
	ActivityLevel string  `json:"activity_level" validate:"required,oneof=sedentary light moderate active very_active"`
}

// GoalResponse represents one metric goal.
type GoalResponse struct {
	Metric string `json:"metric"`
	Value  int    `json:"value"`
	Source string `json:"source"`
}

// GoalSetResponse represents a complete computed goal set.
type GoalSetResponse struct {
	UserID      string       `json:"user_id"`
	Steps       GoalResponse `json:"steps"`
	Calories    GoalResponse `json:"calories"`
	HeartPoints GoalResponse `json:"heart_points"`
	ComputedAt  time.Time    `json:"computed_at"`
}

// RecordResponse represents the sync state of a saved record.
type RecordResponse struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Dirty        bool       `json:"dirty"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// SaveResponse is the response for local-first save endpoints: the saved
// record's sync state plus, for goal saves, the computed goals.
type SaveResponse struct {
	Record RecordResponse   `json:"record"`
	Goals  *GoalSetResponse `json:"goals,omitempty"`
}

// SyncOutcomeResponse reports the result of a manual sync pass.
type SyncOutcomeResponse struct {
	Result      string `json:"result"`
	SyncedCount int    `json:"synced_count"`
	FailedCount int    `json:"failed_count"`
}

// StatusResponse reports the derived sync status and pending count.
type StatusResponse struct {
	Status       string `json:"status"`
	PendingCount int    `json:"pending_count"`
}

// StatusEvent is the payload of one server-sent status stream event.
type StatusEvent struct {
	Status string `json:"status"`
}

// PolicyResponse reports whether an operation may proceed offline.
type PolicyResponse struct {
	Operation         string `json:"operation"`
	CanProceedOffline bool   `json:"can_proceed_offline"`
}

// goalSetToResponse converts a domain.GoalSet to a GoalSetResponse.
func goalSetToResponse(gs *domain.GoalSet) GoalSetResponse {
	toGoal := func(g domain.Goal) GoalResponse {
		return GoalResponse{
			Metric: string(g.Metric),
			Value:  g.Value,
			Source: string(g.Source),
		}
	}
	return GoalSetResponse{
		UserID:      gs.UserID.String(),
		Steps:       toGoal(gs.Steps),
		Calories:    toGoal(gs.Calories),
		HeartPoints: toGoal(gs.HeartPoints),
		ComputedAt:  gs.ComputedAt,
	}
}

// recordToResponse converts a domain.Record to a RecordResponse.
func recordToResponse(record *domain.Record) RecordResponse {
	return RecordResponse{
		ID:           record.ID.String(),
		Kind:         string(record.Kind),
		Dirty:        record.Dirty,
		UpdatedAt:    record.UpdatedAt,
		LastSyncedAt: record.LastSyncedAt,
	}
}

// outcomeToResponse converts a syncer.SyncOutcome to a SyncOutcomeResponse.
func outcomeToResponse(outcome syncer.SyncOutcome) SyncOutcomeResponse {
	return SyncOutcomeResponse{
		Result:      string(outcome.Result),
		SyncedCount: outcome.SyncedCount,
		FailedCount: outcome.FailedCount,
	}
}
