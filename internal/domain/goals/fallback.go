package goals

import (
	"math"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// FallbackGenerator produces a medically safe default goal for any metric.
// It has no failure path: whatever profile attributes are valid refine the
// default, and when none are, the population-level constant is used as-is.
// This is the engine's availability guarantee - total goal computation
// never fails outright.
type FallbackGenerator struct {
	params *Params
}

// NewFallbackGenerator creates a FallbackGenerator with the given parameters.
func NewFallbackGenerator(params *Params) *FallbackGenerator {
	return &FallbackGenerator{params: params}
}

// Generate returns the fallback goal for the given metric. The profile may
// be partially invalid or nil; only attributes that pass their own range
// checks are consulted.
func (f *FallbackGenerator) Generate(metric domain.Metric, profile *domain.UserProfile) domain.Goal {
	value := f.params.FallbackDefaults[metric]
	if value <= 0 {
		// Unknown metric: the most conservative universally safe target is
		// the heart-point default.
		value = f.params.FallbackDefaults[domain.MetricHeartPoints]
		if value <= 0 {
			value = 1
		}
	}

	if profile != nil {
		value = f.refine(metric, profile, value)
	}

	return domain.Goal{
		Metric: metric,
		Value:  value,
		Source: domain.GoalSourceFallback,
	}
}

// refine adjusts the population default using whichever attributes are
// individually valid. Age bracket and sex category are the only inputs the
// fallback trusts; everything else stays at the population default.
func (f *FallbackGenerator) refine(metric domain.Metric, profile *domain.UserProfile, value int) int {
	ageKnown := profile.Age >= domain.MinAge && profile.Age <= domain.MaxAge
	senior := ageKnown && profile.Age >= f.params.SeniorAge

	switch metric {
	case domain.MetricSteps:
		if senior && f.params.FallbackSeniorStepTarget > 0 {
			value = f.params.FallbackSeniorStepTarget
		}

	case domain.MetricCalories:
		if bySex, ok := f.params.FallbackCaloriesBySex[profile.Sex]; ok {
			value = bySex
		}
		if senior {
			// Energy needs decline with age; taper the default slightly.
			value = int(math.Round(float64(value) * 0.9))
		}

	case domain.MetricHeartPoints:
		// The heart-point default is already the conservative WHO floor.
	}

	return value
}
