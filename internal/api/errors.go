package api

import (
	"errors"
	"net/http"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/service"
	"github.com/halcyonfit/halcyon-engine/internal/service/auth"
	"github.com/halcyonfit/halcyon-engine/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrRecordNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrUnknownOperation):
		return http.StatusNotFound

	// Offline policy rejections
	case errors.Is(err, service.ErrOperationRequiresNetwork):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		isProfileValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error. Storage failures land here too -
	// they are fatal to the request.
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrRecordNotFound):
		return "Record not found"

	case errors.Is(err, service.ErrUnknownOperation):
		return "Unknown operation"

	case errors.Is(err, service.ErrOperationRequiresNetwork):
		return "This operation requires connectivity"

	case isProfileValidationError(err):
		return "Invalid profile: " + err.Error()

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	case errors.Is(err, store.ErrStorageFailure):
		return "Local storage is unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// isProfileValidationError reports whether the error is one of the domain
// profile attribute violations. Their messages name only the offending
// attribute range, so they are safe to surface verbatim.
func isProfileValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrEmptyUserID,
		domain.ErrInvalidSex,
		domain.ErrInvalidActivityLevel,
		domain.ErrAgeOutOfRange,
		domain.ErrHeightOutOfRange,
		domain.ErrWeightOutOfRange,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
