package goals

import (
	"log/slog"
	"time"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// Orchestrator runs the three metric calculators and assembles a complete
// GoalSet, substituting the fallback for any calculator that fails.
//
// Calculate is a total function: it never returns an error. Individual
// calculator failures are absorbed into fallback goals and remain
// inspectable through each goal's source tag.
type Orchestrator struct {
	calculators []Calculator
	fallback    *FallbackGenerator
	logger      *slog.Logger

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewOrchestrator creates an Orchestrator with the closed set of three
// calculators and the fallback generator. If params is nil the defaults are
// used; if logger is nil the default logger is used.
func NewOrchestrator(params *Params, logger *slog.Logger) *Orchestrator {
	if params == nil {
		params = NewDefaultParams()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		calculators: []Calculator{
			NewStepsCalculator(params),
			NewCaloriesCalculator(params),
			NewHeartPointsCalculator(params),
		},
		fallback: NewFallbackGenerator(params),
		logger:   logger.With(slog.String("component", "goal_orchestrator")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Calculate derives the complete goal set for the profile. Each calculator
// runs independently; on failure its goal is replaced by the fallback and
// tagged accordingly. The returned GoalSet always satisfies its
// completeness invariant.
func (o *Orchestrator) Calculate(profile *domain.UserProfile) *domain.GoalSet {
	goalSet := &domain.GoalSet{
		ComputedAt: o.now(),
	}
	if profile != nil {
		goalSet.UserID = profile.UserID
	}

	for _, calc := range o.calculators {
		metric := calc.Metric()

		var goal domain.Goal
		if profile == nil {
			goal = o.fallback.Generate(metric, nil)
		} else if value, err := calc.Compute(profile); err != nil {
			o.logger.Debug("calculator failed, substituting fallback goal",
				slog.String("metric", string(metric)),
				slog.String("error", err.Error()))
			goal = o.fallback.Generate(metric, profile)
		} else {
			goal = domain.Goal{
				Metric: metric,
				Value:  value,
				Source: domain.GoalSourceCalculated,
			}
		}

		switch metric {
		case domain.MetricSteps:
			goalSet.Steps = goal
		case domain.MetricCalories:
			goalSet.Calories = goal
		case domain.MetricHeartPoints:
			goalSet.HeartPoints = goal
		}
	}

	return goalSet
}
