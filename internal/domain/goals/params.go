package goals

import (
	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// Params defines all configurable constants for the goal calculators and
// the fallback generator. The defaults follow the standard TDEE activity
// multipliers, the WHO weekly activity recommendation, and commonly used
// step targets per activity tier.
type Params struct {
	// ActivityMultipliers maps an activity tier to its TDEE multiplier.
	// This is the single source of truth for valid tiers in the calorie
	// calculator.
	ActivityMultipliers map[domain.ActivityLevel]float64

	// StepTargets maps an activity tier to its baseline daily step target.
	StepTargets map[domain.ActivityLevel]int

	// WeeklyActiveMinutes maps an activity tier to the weekly
	// moderate-intensity activity target in minutes. One minute of
	// moderate activity earns one heart point.
	WeeklyActiveMinutes map[domain.ActivityLevel]int

	// SeniorAge is the age at or above which the step target is tapered.
	SeniorAge int

	// SeniorStepFactor scales the step target for users at or above
	// SeniorAge.
	SeniorStepFactor float64

	// BMR sex offsets for the Mifflin-St Jeor equation.
	MaleBMROffset   float64
	FemaleBMROffset float64

	// Calorie floor: the daily calorie goal never drops below this value
	// regardless of profile inputs.
	MinCalorieGoal int

	// Fallback defaults, used when a calculator cannot produce a value.
	// These are population-level, medically conservative targets.
	FallbackDefaults map[domain.Metric]int

	// FallbackCaloriesBySex refines the calorie fallback when the sex
	// category is available.
	FallbackCaloriesBySex map[domain.Sex]int

	// FallbackSeniorStepTarget replaces the step fallback for users whose
	// age is known and at or above SeniorAge.
	FallbackSeniorStepTarget int
}

// NewDefaultParams creates a Params instance with the default constants.
func NewDefaultParams() *Params {
	return &Params{
		ActivityMultipliers: map[domain.ActivityLevel]float64{
			domain.ActivitySedentary:  1.2,
			domain.ActivityLight:      1.375,
			domain.ActivityModerate:   1.55,
			domain.ActivityActive:     1.725,
			domain.ActivityVeryActive: 1.9,
		},

		StepTargets: map[domain.ActivityLevel]int{
			domain.ActivitySedentary:  5000,
			domain.ActivityLight:      6500,
			domain.ActivityModerate:   8000,
			domain.ActivityActive:     10000,
			domain.ActivityVeryActive: 12000,
		},

		WeeklyActiveMinutes: map[domain.ActivityLevel]int{
			domain.ActivitySedentary:  150,
			domain.ActivityLight:      150,
			domain.ActivityModerate:   150,
			domain.ActivityActive:     225,
			domain.ActivityVeryActive: 300,
		},

		SeniorAge:        65,
		SeniorStepFactor: 0.8,

		// Mifflin-St Jeor: +5 for males, -161 for females.
		MaleBMROffset:   5,
		FemaleBMROffset: -161,

		MinCalorieGoal: 1200,

		FallbackDefaults: map[domain.Metric]int{
			domain.MetricSteps:       6000,
			domain.MetricCalories:    2000,
			domain.MetricHeartPoints: 15,
		},

		FallbackCaloriesBySex: map[domain.Sex]int{
			domain.SexMale:   2400,
			domain.SexFemale: 1900,
		},

		FallbackSeniorStepTarget: 4500,
	}
}
