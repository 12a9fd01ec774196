package goals

import (
	"errors"
	"math"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// errSexRequired marks the one attribute the calorie calculator cannot do
// without: the Mifflin-St Jeor equation is only defined for the male and
// female categories.
var errSexRequired = errors.New("calorie estimation requires a male or female sex category")

// CaloriesCalculator derives the daily calorie goal via basal metabolic
// rate estimation: Mifflin-St Jeor BMR scaled by the activity tier's TDEE
// multiplier. All inputs are metric (centimeters, kilograms).
type CaloriesCalculator struct {
	params *Params
}

// NewCaloriesCalculator creates a CaloriesCalculator with the given parameters.
func NewCaloriesCalculator(params *Params) *CaloriesCalculator {
	return &CaloriesCalculator{params: params}
}

// Ensure CaloriesCalculator implements the Calculator interface.
var _ Calculator = (*CaloriesCalculator)(nil)

// Metric implements Calculator.Metric.
func (c *CaloriesCalculator) Metric() domain.Metric {
	return domain.MetricCalories
}

// Compute implements Calculator.Compute.
//
// BMR (Mifflin-St Jeor, metric units):
//
//	10*weightKG + 6.25*heightCM - 5*age + 5    (male)
//	10*weightKG + 6.25*heightCM - 5*age - 161  (female)
//
// The daily goal is BMR times the activity multiplier, rounded, and never
// below the configured calorie floor.
func (c *CaloriesCalculator) Compute(profile *domain.UserProfile) (int, error) {
	if profile.Age < domain.MinAge || profile.Age > domain.MaxAge {
		return 0, newCalculationError(domain.MetricCalories, "age outside supported range", domain.ErrAgeOutOfRange)
	}
	if profile.HeightCM < domain.MinHeightCM || profile.HeightCM > domain.MaxHeightCM {
		return 0, newCalculationError(domain.MetricCalories, "height outside supported range", domain.ErrHeightOutOfRange)
	}
	if profile.WeightKG < domain.MinWeightKG || profile.WeightKG > domain.MaxWeightKG {
		return 0, newCalculationError(domain.MetricCalories, "weight outside supported range", domain.ErrWeightOutOfRange)
	}

	var sexOffset float64
	switch profile.Sex {
	case domain.SexMale:
		sexOffset = c.params.MaleBMROffset
	case domain.SexFemale:
		sexOffset = c.params.FemaleBMROffset
	default:
		return 0, newCalculationError(domain.MetricCalories, "sex category unavailable", errSexRequired)
	}

	multiplier, ok := c.params.ActivityMultipliers[profile.ActivityLevel]
	if !ok {
		return 0, newCalculationError(
			domain.MetricCalories,
			"unrecognized activity level",
			domain.ErrInvalidActivityLevel,
		)
	}

	bmr := 10*profile.WeightKG + 6.25*profile.HeightCM - 5*float64(profile.Age) + sexOffset
	goal := int(math.Round(bmr * multiplier))

	if goal < c.params.MinCalorieGoal {
		goal = c.params.MinCalorieGoal
	}

	return goal, nil
}
