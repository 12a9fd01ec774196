package goals

import (
	"math"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// HeartPointsCalculator derives the daily heart-point target from the WHO
// weekly activity recommendation for the user's tier. One minute of
// moderate-intensity activity earns one heart point, so the daily target is
// the weekly minute target divided across seven days.
type HeartPointsCalculator struct {
	params *Params
}

// NewHeartPointsCalculator creates a HeartPointsCalculator with the given parameters.
func NewHeartPointsCalculator(params *Params) *HeartPointsCalculator {
	return &HeartPointsCalculator{params: params}
}

// Ensure HeartPointsCalculator implements the Calculator interface.
var _ Calculator = (*HeartPointsCalculator)(nil)

// Metric implements Calculator.Metric.
func (c *HeartPointsCalculator) Metric() domain.Metric {
	return domain.MetricHeartPoints
}

// Compute implements Calculator.Compute. The WHO baseline of 150 weekly
// minutes yields a daily target of 21 points; more active tiers carry
// proportionally higher targets.
func (c *HeartPointsCalculator) Compute(profile *domain.UserProfile) (int, error) {
	weekly, ok := c.params.WeeklyActiveMinutes[profile.ActivityLevel]
	if !ok {
		return 0, newCalculationError(
			domain.MetricHeartPoints,
			"unrecognized activity level",
			domain.ErrInvalidActivityLevel,
		)
	}

	daily := int(math.Floor(float64(weekly) / 7))
	if daily < 1 {
		daily = 1
	}

	return daily, nil
}
