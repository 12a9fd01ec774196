package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyUserID is returned when a profile or record is missing its owner.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrInvalidSex is returned when the biological sex category is not one
	// of the recognized values.
	ErrInvalidSex = errors.New("invalid sex category")

	// ErrInvalidActivityLevel is returned when the activity level is not one
	// of the recognized tiers.
	ErrInvalidActivityLevel = errors.New("invalid activity level")

	// ErrAgeOutOfRange is returned when the age falls outside the supported
	// 13-120 range.
	ErrAgeOutOfRange = errors.New("age out of supported range")

	// ErrHeightOutOfRange is returned when the height in centimeters is not
	// physiologically plausible.
	ErrHeightOutOfRange = errors.New("height out of supported range")

	// ErrWeightOutOfRange is returned when the weight in kilograms is not
	// physiologically plausible.
	ErrWeightOutOfRange = errors.New("weight out of supported range")

	// ErrInvalidGoal is returned when a goal value is zero or negative, or
	// its source tag is unknown. A complete GoalSet never carries such a goal.
	ErrInvalidGoal = errors.New("invalid goal")

	// ErrInvalidRecordKind is returned when a syncable record carries an
	// unknown payload kind.
	ErrInvalidRecordKind = errors.New("invalid record kind")

	// ErrEmptyPayload is returned when a syncable record has no payload.
	ErrEmptyPayload = errors.New("record payload cannot be empty")
)
