package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sex is the biological sex category used by the metric calculators.
type Sex string

// Recognized sex categories.
const (
	SexFemale      Sex = "female"
	SexMale        Sex = "male"
	SexUnspecified Sex = "unspecified"
)

// IsValid reports whether the sex category is one of the recognized values.
func (s Sex) IsValid() bool {
	switch s {
	case SexFemale, SexMale, SexUnspecified:
		return true
	}
	return false
}

// ActivityLevel describes a user's habitual activity tier. The tiers mirror
// the standard TDEE activity multipliers.
type ActivityLevel string

// Recognized activity levels, from least to most active.
const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// IsValid reports whether the activity level is one of the recognized tiers.
func (a ActivityLevel) IsValid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive:
		return true
	}
	return false
}

// Supported physiological input ranges. Values outside these bounds are
// rejected by profile validation and by the individual calculators.
const (
	MinAge = 13
	MaxAge = 120

	MinHeightCM = 90.0
	MaxHeightCM = 250.0

	MinWeightKG = 25.0
	MaxWeightKG = 350.0
)

// UserProfile holds the identity and physiological attributes the goal
// calculators read. It is an immutable value: edits produce a new instance
// that replaces the old one, the engine itself never mutates a profile.
type UserProfile struct {
	UserID        uuid.UUID     `json:"user_id"`
	Age           int           `json:"age"`
	Sex           Sex           `json:"sex"`
	HeightCM      float64       `json:"height_cm"`
	WeightKG      float64       `json:"weight_kg"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewUserProfile creates a validated UserProfile for the given user.
// The updated timestamp is set to the current UTC time.
func NewUserProfile(
	userID uuid.UUID,
	age int,
	sex Sex,
	heightCM, weightKG float64,
	activity ActivityLevel,
) (*UserProfile, error) {
	profile := &UserProfile{
		UserID:        userID,
		Age:           age,
		Sex:           sex,
		HeightCM:      heightCM,
		WeightKG:      weightKG,
		ActivityLevel: activity,
		UpdatedAt:     time.Now().UTC(),
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Validate checks that every attribute is within its supported domain range.
// Returns the first violation found.
func (p *UserProfile) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return ErrAgeOutOfRange
	}
	if !p.Sex.IsValid() {
		return ErrInvalidSex
	}
	if p.HeightCM < MinHeightCM || p.HeightCM > MaxHeightCM {
		return ErrHeightOutOfRange
	}
	if p.WeightKG < MinWeightKG || p.WeightKG > MaxWeightKG {
		return ErrWeightOutOfRange
	}
	if !p.ActivityLevel.IsValid() {
		return ErrInvalidActivityLevel
	}
	return nil
}
