package goals

import (
	"math"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// StepsCalculator derives the daily step target from the user's activity
// tier, tapered for seniors. It needs a valid age and a recognized activity
// level.
type StepsCalculator struct {
	params *Params
}

// NewStepsCalculator creates a StepsCalculator with the given parameters.
func NewStepsCalculator(params *Params) *StepsCalculator {
	return &StepsCalculator{params: params}
}

// Ensure StepsCalculator implements the Calculator interface.
var _ Calculator = (*StepsCalculator)(nil)

// Metric implements Calculator.Metric.
func (c *StepsCalculator) Metric() domain.Metric {
	return domain.MetricSteps
}

// Compute implements Calculator.Compute. The baseline target comes from the
// activity tier table; users at or above the senior age get the target
// scaled by the senior factor, rounded to the nearest hundred steps.
func (c *StepsCalculator) Compute(profile *domain.UserProfile) (int, error) {
	if profile.Age < domain.MinAge || profile.Age > domain.MaxAge {
		return 0, newCalculationError(domain.MetricSteps, "age outside supported range", domain.ErrAgeOutOfRange)
	}

	target, ok := c.params.StepTargets[profile.ActivityLevel]
	if !ok {
		return 0, newCalculationError(
			domain.MetricSteps,
			"unrecognized activity level",
			domain.ErrInvalidActivityLevel,
		)
	}

	if profile.Age >= c.params.SeniorAge {
		tapered := float64(target) * c.params.SeniorStepFactor
		target = int(math.Round(tapered/100) * 100)
	}

	return target, nil
}
