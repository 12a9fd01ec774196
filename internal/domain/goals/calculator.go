package goals

import (
	"fmt"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// Calculator derives one metric's daily goal from a user profile. The set
// of calculators is closed: exactly one per metric, plus the fallback
// generator. Implementations are stateless and side-effect-free.
type Calculator interface {
	// Metric returns the metric this calculator produces.
	Metric() domain.Metric

	// Compute derives the daily goal value from the profile. Out-of-range
	// or missing required attributes produce a *CalculationError; callers
	// must treat that as an expected, recoverable outcome, not a fault.
	Compute(profile *domain.UserProfile) (int, error)
}

// CalculationError reports that a calculator could not produce a value for
// its metric. It is always recovered locally by the fallback generator and
// never escalated past the orchestrator.
type CalculationError struct {
	// Metric is the metric whose calculation failed.
	Metric domain.Metric

	// Reason is a short human-readable description of the failure.
	Reason string

	// Err is the underlying domain validation error, if any.
	Err error
}

// Error implements the error interface.
func (e *CalculationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s calculation failed: %s: %v", e.Metric, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s calculation failed: %s", e.Metric, e.Reason)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CalculationError) Unwrap() error {
	return e.Err
}

// newCalculationError builds a CalculationError for the given metric.
func newCalculationError(metric domain.Metric, reason string, err error) *CalculationError {
	return &CalculationError{Metric: metric, Reason: reason, Err: err}
}
